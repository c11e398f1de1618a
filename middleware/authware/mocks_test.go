package authware_test

import (
	"context"
	"strconv"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"
)

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
