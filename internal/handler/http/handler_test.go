package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"cordi-chat/internal/domain"
	handler "cordi-chat/internal/handler/http"
	"cordi-chat/internal/middleware"
	"cordi-chat/internal/repository"
	"cordi-chat/internal/repository/mocks"
	"cordi-chat/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	rootAdmin = &domain.User{ID: 1, Username: "root", Role: domain.RoleAdmin}
	alice     = &domain.User{ID: 2, Username: "alice", Role: domain.RoleStudent}
)

type testEnv struct {
	users     *mocks.UserRepository
	messages  *mocks.MessageRepository
	responses *mocks.AutoResponseRepository
	router    *gin.Engine
}

// asUser 模拟 Auth 中间件，从 X-Test-User / X-Test-Role 头读取身份
func asUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader("X-Test-User"); raw != "" {
			id, _ := strconv.ParseUint(raw, 10, 64)
			c.Set(middleware.ContextUserIDKey, uint(id))
			c.Set(middleware.ContextRoleKey, c.GetHeader("X-Test-Role"))
		}
		c.Next()
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	env := &testEnv{
		users:     new(mocks.UserRepository),
		messages:  new(mocks.MessageRepository),
		responses: new(mocks.AutoResponseRepository),
	}

	conv := handler.NewConversationHandler(service.NewConversationService(env.users, env.messages, env.responses, nil))
	faq := handler.NewAutoResponseHandler(service.NewAutoResponseService(env.responses))
	users := handler.NewUserHandler(service.NewUserService(env.users))

	r := gin.New()
	api := r.Group("/api", asUser())
	api.POST("/conversations/messages", conv.SendMessage)
	api.GET("/conversations/messages", conv.FetchConversation)
	api.GET("/conversations/admin", conv.GetAdmin)
	api.GET("/auto-responses", faq.List)
	api.GET("/auto-responses/match", faq.Match)
	api.POST("/auto-responses", faq.Create)
	api.PUT("/auto-responses/:id", faq.Update)
	api.DELETE("/auto-responses/:id", faq.Delete)
	api.GET("/users/stats", users.Stats)
	api.PUT("/users/:id", users.Update)
	api.PUT("/users/:id/activity", users.TouchActivity)
	env.router = r
	return env
}

func (e *testEnv) do(method, path string, body interface{}, user *domain.User) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("X-Test-User", strconv.FormatUint(uint64(user.ID), 10))
		req.Header.Set("X-Test-Role", string(user.Role))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestSendMessage_StudentGetsAutoReply(t *testing.T) {
	env := newTestEnv(t)
	env.users.On("FindByID", mock.Anything, uint(2)).Return(alice, nil).Once()
	env.users.On("FindFirstAdmin", mock.Anything).Return(rootAdmin, nil).Once()
	env.responses.On("FindExact", mock.Anything, "hours").
		Return(&domain.AutoResponse{ID: 1, Question: "hours", Response: "9-5"}, nil).Once()
	var nextID uint = 10
	env.messages.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		nextID++
		args.Get(1).(*domain.Message).ID = nextID
	}).Return(nil).Twice()

	w := env.do(http.MethodPost, "/api/conversations/messages", map[string]interface{}{"senderId": 2, "message": "hours"}, alice)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"primaryMessageId":11,"senderId":2,"receiverId":1}`, w.Body.String())
	env.messages.AssertExpectations(t)
}

func TestSendMessage_Errors(t *testing.T) {
	env := newTestEnv(t)

	// 未认证
	w := env.do(http.MethodPost, "/api/conversations/messages", map[string]interface{}{"message": "hi"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 冒充其他发送者
	w = env.do(http.MethodPost, "/api/conversations/messages", map[string]interface{}{"senderId": 3, "message": "hi"}, alice)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 空消息
	w = env.do(http.MethodPost, "/api/conversations/messages", map[string]interface{}{"message": "   "}, alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 没有管理员
	env.users.On("FindByID", mock.Anything, uint(2)).Return(alice, nil).Once()
	env.users.On("FindFirstAdmin", mock.Anything).Return(nil, repository.ErrUserNotFound).Once()
	w = env.do(http.MethodPost, "/api/conversations/messages", map[string]interface{}{"message": "hi"}, alice)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 主消息写入失败
	env.users.On("FindByID", mock.Anything, uint(1)).Return(rootAdmin, nil).Once()
	env.users.On("FindByID", mock.Anything, uint(2)).Return(alice, nil).Once()
	env.messages.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	w = env.do(http.MethodPost, "/api/conversations/messages", map[string]interface{}{"receiverId": 2, "message": "hi"}, rootAdmin)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk full")
}

func TestFetchConversation(t *testing.T) {
	env := newTestEnv(t)
	rows := []domain.MessageView{
		{Message: domain.Message{ID: 1, SenderID: 2, ReceiverID: 1, Message: "hours"}, SenderName: "alice"},
		{Message: domain.Message{ID: 2, SenderID: 1, ReceiverID: 2, Message: "9-5"}, SenderName: "Admin"},
	}
	env.users.On("FindFirstAdmin", mock.Anything).Return(rootAdmin, nil)
	env.messages.On("ListConversation", mock.Anything, uint(2), uint(1), uint(1)).Return(rows, nil).Once()

	w := env.do(http.MethodGet, "/api/conversations/messages?userA=2&userB=0", nil, alice)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "hours", got[0]["message"])
	assert.Equal(t, "Admin", got[1]["sender_name"])

	w = env.do(http.MethodGet, "/api/conversations/messages?userA=abc&userB=1", nil, alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/conversations/messages?userA=1&userB=3", nil, alice)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.users.On("FindFirstAdmin", mock.Anything).Return(rootAdmin, nil).Once()
	env.users.On("FindFirstAdmin", mock.Anything).Return(nil, repository.ErrUserNotFound).Once()

	w := env.do(http.MethodGet, "/api/conversations/admin", nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1,"username":"root","role":"admin"}`, w.Body.String())

	w = env.do(http.MethodGet, "/api/conversations/admin", nil, alice)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAutoResponses_ListHidesResponsesFromNonAdmins(t *testing.T) {
	env := newTestEnv(t)
	entries := []domain.AutoResponse{{ID: 1, Question: "hours", Response: "9-5"}}
	env.responses.On("List", mock.Anything).Return(entries, nil).Twice()

	w := env.do(http.MethodGet, "/api/auto-responses", nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"question":"hours"}]`, w.Body.String())

	w = env.do(http.MethodGet, "/api/auto-responses", nil, rootAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"question":"hours","response":"9-5"}]`, w.Body.String())
}

func TestAutoResponses_MatchAndMutations(t *testing.T) {
	env := newTestEnv(t)
	env.responses.On("FindExact", mock.Anything, "nothing").Return(nil, repository.ErrAutoResponseNotFound).Once()
	env.responses.On("FindContainedIn", mock.Anything, "nothing").Return(nil, repository.ErrAutoResponseNotFound).Once()

	w := env.do(http.MethodGet, "/api/auto-responses/match?question=nothing", nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"question":"nothing","response":"`+service.DefaultAutoReply+`","matched":false}`, w.Body.String())

	w = env.do(http.MethodGet, "/api/auto-responses/match", nil, alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.responses.On("Upsert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.AutoResponse).ID = 3
	}).Return(nil).Once()
	w = env.do(http.MethodPost, "/api/auto-responses", map[string]string{"question": "hours", "response": "9-5"}, rootAdmin)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":3,"question":"hours","response":"9-5"}`, w.Body.String())

	w = env.do(http.MethodPost, "/api/auto-responses", map[string]string{"question": "hours"}, rootAdmin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.responses.On("Update", mock.Anything, mock.Anything).Return(repository.ErrAutoResponseNotFound).Once()
	w = env.do(http.MethodPut, "/api/auto-responses/9", map[string]string{"question": "q", "response": "r"}, rootAdmin)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodDelete, "/api/auto-responses/abc", nil, rootAdmin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.responses.On("Delete", mock.Anything, uint(3)).Return(nil).Once()
	w = env.do(http.MethodDelete, "/api/auto-responses/3", nil, rootAdmin)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUsers_UpdateConflictAndActivity(t *testing.T) {
	env := newTestEnv(t)
	env.users.On("FindByID", mock.Anything, uint(2)).Return(&domain.User{ID: 2, Username: "alice", Role: domain.RoleStudent}, nil).Once()
	env.users.On("Save", mock.Anything, mock.Anything).Return(repository.ErrDuplicateEntry).Once()

	w := env.do(http.MethodPut, "/api/users/2", map[string]string{"username": "root", "role": "student"}, rootAdmin)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(http.MethodPut, "/api/users/3/activity", nil, alice)
	assert.Equal(t, http.StatusForbidden, w.Code)

	env.users.On("FindByID", mock.Anything, uint(2)).Return(alice, nil).Once()
	env.users.On("TouchActivity", mock.Anything, uint(2), mock.Anything).Return(nil).Once()
	w = env.do(http.MethodPut, "/api/users/2/activity", nil, alice)
	assert.Equal(t, http.StatusNoContent, w.Code)

	env.users.On("Count", mock.Anything).Return(int64(4), int64(1), nil).Once()
	w = env.do(http.MethodGet, "/api/users/stats", nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":4,"online":1}`, w.Body.String())
}
