package service

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"taskflow/internal/database"
	"taskflow/internal/model"
	"taskflow/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func restoreGlobals() {
	bcryptGenerateFromPassword = bcrypt.GenerateFromPassword
	bcryptCompareHashAndPassword = bcrypt.CompareHashAndPassword
	timeNow = time.Now
	newTokenID = uuid.NewString
	parseWithClaims = jwt.ParseWithClaims

	getTaskByID = store.GetTaskByID
	createTask = store.CreateTask
	updateTask = store.UpdateTask
	deleteTask = store.DeleteTask
	listTasksForUser = store.ListTasksForUser
	listAllTasks = store.ListAllTasks
	userExists = store.UserExists

	hashPassword = HashPassword
	getUserByID = store.GetUserByID
	getUserByEmail = store.GetUserByEmail
	listUsers = store.ListUsers
	createUser = store.CreateUser
	updateUser = store.UpdateUser
	deleteUser = store.DeleteUser
	emailTaken = store.EmailTaken
	listTasksCreatedBy = store.ListTasksCreatedBy
	listTasksAssignedTo = store.ListTasksAssignedTo
}

func fastBcrypt() {
	bcryptGenerateFromPassword = func(p []byte, _ int) ([]byte, error) {
		return bcrypt.GenerateFromPassword(p, bcrypt.MinCost)
	}
}

// memStore 以記憶體模擬資料庫，刪除使用者時比照外鍵行為
type memStore struct {
	users      map[int]model.User
	tasks      map[int]model.Task
	nextID     int
	taskWrites int
}

func newMemStore(t *testing.T) *memStore {
	t.Helper()
	t.Cleanup(restoreGlobals)
	fastBcrypt()

	m := &memStore{users: map[int]model.User{}, tasks: map[int]model.Task{}, nextID: 100}
	notFound := func(op string) error { return fmt.Errorf("%s: %w", op, store.ErrNotFound) }

	getTaskByID = func(_ context.Context, _ database.DB, id int) (*model.Task, error) {
		task, ok := m.tasks[id]
		if !ok {
			return nil, notFound("GetTaskByID")
		}
		out := m.withSummaries(task)
		return &out, nil
	}
	createTask = func(_ context.Context, _ database.DB, task *model.Task) (*model.Task, error) {
		m.nextID++
		task.ID = m.nextID
		m.tasks[task.ID] = *task
		m.taskWrites++
		return task, nil
	}
	updateTask = func(_ context.Context, _ database.DB, task *model.Task) error {
		if _, ok := m.tasks[task.ID]; !ok {
			return notFound("UpdateTask")
		}
		stored := *task
		stored.Creator, stored.Assignee = nil, nil
		m.tasks[task.ID] = stored
		m.taskWrites++
		return nil
	}
	deleteTask = func(_ context.Context, _ database.DB, id int) error {
		if _, ok := m.tasks[id]; !ok {
			return notFound("DeleteTask")
		}
		delete(m.tasks, id)
		m.taskWrites++
		return nil
	}
	listTasksForUser = func(_ context.Context, _ database.DB, uid int) ([]model.Task, error) {
		return m.filter(func(t model.Task) bool { return t.CreatedBy == uid || t.IsAssignedTo(uid) }), nil
	}
	listTasksCreatedBy = func(_ context.Context, _ database.DB, uid int) ([]model.Task, error) {
		return m.filter(func(t model.Task) bool { return t.CreatedBy == uid }), nil
	}
	listTasksAssignedTo = func(_ context.Context, _ database.DB, uid int) ([]model.Task, error) {
		return m.filter(func(t model.Task) bool { return t.IsAssignedTo(uid) }), nil
	}
	listAllTasks = func(context.Context, database.DB) ([]model.Task, error) {
		return m.filter(func(model.Task) bool { return true }), nil
	}
	userExists = func(_ context.Context, _ database.DB, id int) (bool, error) {
		_, ok := m.users[id]
		return ok, nil
	}

	getUserByID = func(_ context.Context, _ database.DB, id int) (*model.User, error) {
		u, ok := m.users[id]
		if !ok {
			return nil, notFound("GetUserByID")
		}
		return &u, nil
	}
	getUserByEmail = func(_ context.Context, _ database.DB, email string) (*model.User, error) {
		for _, u := range m.users {
			if u.Email == email {
				return &u, nil
			}
		}
		return nil, notFound("GetUserByEmail")
	}
	listUsers = func(context.Context, database.DB) ([]model.User, error) {
		out := []model.User{}
		for _, id := range m.sortedUserIDs() {
			out = append(out, m.users[id])
		}
		return out, nil
	}
	createUser = func(_ context.Context, _ database.DB, u *model.User) (*model.User, error) {
		m.nextID++
		u.ID = m.nextID
		m.users[u.ID] = *u
		return u, nil
	}
	updateUser = func(_ context.Context, _ database.DB, u *model.User) error {
		if _, ok := m.users[u.ID]; !ok {
			return notFound("UpdateUser")
		}
		m.users[u.ID] = *u
		return nil
	}
	deleteUser = func(_ context.Context, _ database.DB, id int) error {
		if _, ok := m.users[id]; !ok {
			return notFound("DeleteUser")
		}
		delete(m.users, id)
		for tid, task := range m.tasks {
			switch {
			case task.CreatedBy == id:
				delete(m.tasks, tid)
			case task.IsAssignedTo(id):
				task.AssignedTo = nil
				m.tasks[tid] = task
			}
		}
		return nil
	}
	emailTaken = func(_ context.Context, _ database.DB, email string, excludeID int) (bool, error) {
		for _, u := range m.users {
			if u.Email == email && u.ID != excludeID {
				return true, nil
			}
		}
		return false, nil
	}
	return m
}

func (m *memStore) addUser(id int, role model.Role) model.User {
	u := model.User{ID: id, Name: fmt.Sprintf("user%d", id), Email: fmt.Sprintf("user%d@example.com", id), Role: role}
	m.users[id] = u
	return u
}

func (m *memStore) addTask(id, createdBy int, assignedTo *int) model.Task {
	t := model.Task{ID: id, Title: fmt.Sprintf("task %d", id), Status: model.StatusTodo, Priority: model.PriorityMedium, CreatedBy: createdBy, AssignedTo: assignedTo}
	m.tasks[id] = t
	return t
}

func (m *memStore) withSummaries(t model.Task) model.Task {
	if u, ok := m.users[t.CreatedBy]; ok {
		s := u.Summary()
		t.Creator = &s
	}
	if t.AssignedTo != nil {
		if u, ok := m.users[*t.AssignedTo]; ok {
			s := u.Summary()
			t.Assignee = &s
		}
	}
	return t
}

func (m *memStore) filter(keep func(model.Task) bool) []model.Task {
	ids := make([]int, 0, len(m.tasks))
	for id := range m.tasks {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))
	out := []model.Task{}
	for _, id := range ids {
		if t := m.tasks[id]; keep(t) {
			out = append(out, m.withSummaries(t))
		}
	}
	return out
}

func (m *memStore) sortedUserIDs() []int {
	ids := make([]int, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
