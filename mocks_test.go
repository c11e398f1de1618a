package forum_test

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	forum "github.com/nullspire/forum"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// stubRepoManager executes transaction bodies inline against a zero value tx.
// The embedded interface covers the repositories a given test never touches.
type stubRepoManager struct {
	forum.RepositoryManager
	users      forum.Users
	categories forum.Categories
	posts      forum.Posts
	replies    forum.Replies
	runInTxErr error
	txCalls    int
}

func (s *stubRepoManager) Users() forum.Users           { return s.users }
func (s *stubRepoManager) Categories() forum.Categories { return s.categories }
func (s *stubRepoManager) Posts() forum.Posts           { return s.posts }
func (s *stubRepoManager) Replies() forum.Replies       { return s.replies }

func (s *stubRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	s.txCalls++
	if s.runInTxErr != nil {
		return s.runInTxErr
	}
	var tx bun.Tx
	return f(ctx, tx)
}

// MockUsers mocks the user repository methods the handlers touch. The
// embedded interface covers the generic repository surface we never call.
type MockUsers struct {
	forum.Users
	mock.Mock
}

func (m *MockUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *forum.User) (*forum.User, error) {
	args := m.Called(ctx, tx, user)
	if record, ok := args.Get(0).(*forum.User); ok {
		return record, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*forum.User, error) {
	args := m.Called(ctx, email, criteria)
	if record, ok := args.Get(0).(*forum.User); ok {
		return record, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) SetBannedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, banned bool) (*forum.User, error) {
	args := m.Called(ctx, tx, id, banned)
	if record, ok := args.Get(0).(*forum.User); ok {
		return record, args.Error(1)
	}
	return nil, args.Error(1)
}

// stubCategories serves a fixed category list
type stubCategories struct {
	forum.Categories
	records []*forum.Category
	err     error
}

func (s *stubCategories) List(ctx context.Context) ([]*forum.Category, error) {
	return s.records, s.err
}

// stubPosts serves fixed post records
type stubPosts struct {
	forum.Posts
	records   []*forum.Post
	record    *forum.Post
	getErr    error
	deleteErr error
	deleted   []uuid.UUID
}

func (s *stubPosts) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*forum.Post, error) {
	return s.records, s.getErr
}

func (s *stubPosts) GetWithAuthor(ctx context.Context, id uuid.UUID) (*forum.Post, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.record, nil
}

func (s *stubPosts) Publish(ctx context.Context, post *forum.Post) (*forum.Post, error) {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	return post, nil
}

func (s *stubPosts) DeleteByID(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return s.deleteErr
}

func (s *stubPosts) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return s.deleteErr
}

// stubReplies serves fixed reply records
type stubReplies struct {
	forum.Replies
	records   []*forum.Reply
	listErr   error
	deleteErr error
	deleted   []uuid.UUID
}

func (s *stubReplies) ListByPost(ctx context.Context, postID uuid.UUID) ([]*forum.Reply, error) {
	return s.records, s.listErr
}

func (s *stubReplies) Publish(ctx context.Context, reply *forum.Reply) (*forum.Reply, error) {
	if reply.ID == uuid.Nil {
		reply.ID = uuid.New()
	}
	return reply, nil
}

func (s *stubReplies) DeleteByID(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return s.deleteErr
}

// MockContext is a hand-rolled router.Context double. Request state reads
// come from plain maps the test seeds, response and body methods go through
// testify expectations.
type MockContext struct {
	mock.Mock
	NextCalled bool

	MethodM      string
	PathM        string
	OriginalURLM string
	BodyM        []byte

	HeadersM   map[string]string
	ParamsM    map[string]string
	QueriesM   map[string]string
	LocalsMock map[string]any
	StoreM     map[string]any

	StatusCode int

	ctx context.Context
}

var _ router.Context = (*MockContext)(nil)

func NewMockContext() *MockContext {
	return &MockContext{
		HeadersM:   map[string]string{},
		ParamsM:    map[string]string{},
		QueriesM:   map[string]string{},
		LocalsMock: map[string]any{},
		StoreM:     map[string]any{},
		ctx:        context.Background(),
	}
}

func (m *MockContext) Method() string { return m.MethodM }
func (m *MockContext) Path() string   { return m.PathM }

func (m *MockContext) Param(name string, defaultValue ...string) string {
	if v, ok := m.ParamsM[name]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *MockContext) ParamsInt(key string, defaultValue int) int {
	if v, ok := m.ParamsM[key]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func (m *MockContext) Query(name string, defaultValue string) string {
	if v, ok := m.QueriesM[name]; ok {
		return v
	}
	return defaultValue
}

func (m *MockContext) QueryInt(name string, defaultValue int) int {
	if v, ok := m.QueriesM[name]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func (m *MockContext) Queries() map[string]string { return m.QueriesM }

func (m *MockContext) Body() []byte { return m.BodyM }

func (m *MockContext) Locals(key any, value ...any) any {
	name, _ := key.(string)
	if len(value) > 0 {
		m.LocalsMock[name] = value[0]
		return nil
	}
	if v, ok := m.LocalsMock[name]; ok {
		return v
	}
	return nil
}

func (m *MockContext) Render(name string, bind any, layouts ...string) error {
	return m.Called(name, bind, layouts).Error(0)
}

func (m *MockContext) Cookie(cookie *router.Cookie) { m.Called(cookie) }

func (m *MockContext) Cookies(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		return m.Called(key, defaultValue[0]).String(0)
	}
	return m.Called(key).String(0)
}

func (m *MockContext) CookieParser(out any) error { return m.Called(out).Error(0) }

func (m *MockContext) Redirect(location string, status ...int) error {
	if len(status) > 0 {
		return m.Called(location, status[0]).Error(0)
	}
	return m.Called(location).Error(0)
}

func (m *MockContext) RedirectToRoute(routeName string, params router.ViewContext, status ...int) error {
	if len(status) > 0 {
		return m.Called(routeName, params, status[0]).Error(0)
	}
	return m.Called(routeName, params).Error(0)
}

func (m *MockContext) RedirectBack(fallback string, status ...int) error {
	if len(status) > 0 {
		return m.Called(fallback, status[0]).Error(0)
	}
	return m.Called(fallback).Error(0)
}

func (m *MockContext) Header(key string) string { return m.HeadersM[key] }
func (m *MockContext) Referer() string          { return m.HeadersM["Referer"] }
func (m *MockContext) OriginalURL() string      { return m.OriginalURLM }

func (m *MockContext) Status(code int) router.Context {
	m.StatusCode = code
	return m
}

func (m *MockContext) Send(body []byte) error       { return m.Called(body).Error(0) }
func (m *MockContext) SendString(body string) error { return m.Called(body).Error(0) }

func (m *MockContext) JSON(code int, v any) error { return m.Called(code, v).Error(0) }

func (m *MockContext) NoContent(code int) error { return m.Called(code).Error(0) }

func (m *MockContext) SetHeader(key, value string) router.Context {
	m.HeadersM[key] = value
	return m
}

func (m *MockContext) Set(key string, value any) { m.StoreM[key] = value }

func (m *MockContext) Get(key string, def any) any {
	if v, ok := m.StoreM[key]; ok {
		return v
	}
	return def
}

func (m *MockContext) GetString(key string, def string) string {
	if v, ok := m.StoreM[key].(string); ok {
		return v
	}
	return def
}

func (m *MockContext) GetInt(key string, def int) int {
	if v, ok := m.StoreM[key].(int); ok {
		return v
	}
	return def
}

func (m *MockContext) GetBool(key string, def bool) bool {
	if v, ok := m.StoreM[key].(bool); ok {
		return v
	}
	return def
}

func (m *MockContext) Bind(v any) error { return m.Called(v).Error(0) }

func (m *MockContext) Context() context.Context       { return m.ctx }
func (m *MockContext) SetContext(ctx context.Context) { m.ctx = ctx }

func (m *MockContext) Next() error {
	m.NextCalled = true
	return nil
}

// stubAuthenticator hands back canned login results
type stubAuthenticator struct {
	token    string
	identity forum.Identity
	err      error
	svc      forum.TokenService
}

func (s *stubAuthenticator) Login(ctx context.Context, email, password string) (string, forum.Identity, error) {
	if s.err != nil {
		return "", nil, s.err
	}
	return s.token, s.identity, nil
}

func (s *stubAuthenticator) TokenService() forum.TokenService {
	return s.svc
}
