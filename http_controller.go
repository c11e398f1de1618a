package forum

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// APIController handles the forum's JSON routes.
type APIController struct {
	Logger     Logger
	Repo       RepositoryManager
	Auther     Authenticator
	Activity   ActivitySink
	AdminEmail string
	ContextKey string
}

type APIControllerOption func(*APIController) *APIController

func NewAPIController(opts ...APIControllerOption) *APIController {
	c := &APIController{
		Logger:     defLogger{},
		Activity:   noopActivitySink{},
		ContextKey: "user",
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in api controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in api controller...")
	}

	return c
}

func WithControllerLogger(l Logger) APIControllerOption {
	return func(c *APIController) *APIController {
		if l != nil {
			c.Logger = l
		}
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther Authenticator) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Auther = auther
		return c
	}
}

func WithControllerAdminEmail(email string) APIControllerOption {
	return func(c *APIController) *APIController {
		c.AdminEmail = email
		return c
	}
}

func WithControllerActivitySink(sink ActivitySink) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Activity = normalizeActivitySink(sink)
		return c
	}
}

// RegisterRoutes wires the API routes. Content creation requires the access
// middleware, moderation additionally requires the admin gate.
func (a *APIController) RegisterRoutes(group RouteRegistrar, access router.MiddlewareFunc, admin router.MiddlewareFunc) {
	group.Post("/signup", a.Signup)
	group.Post("/login", a.Login)
	group.Get("/categories", a.ListCategories)
	group.Get("/categories/:categoryId/posts", a.ListPosts)
	group.Get("/posts/:postId", a.ShowPost)

	group.Post("/posts", a.CreatePost, access)
	group.Post("/posts/:postId/replies", a.CreateReply, access)

	group.Delete("/admin/posts/:postId", a.DeletePost, access, admin)
	group.Delete("/admin/replies/:replyId", a.DeleteReply, access, admin)
	group.Post("/admin/users/:userId/ban", a.BanUser, access, admin)
}

// SignupRequest payload
type SignupRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Validate will run validation rules
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *APIController) Signup(ctx router.Context) error {
	payload := new(SignupRequest)

	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "Email and password required",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "Email and password required",
		})
	}

	register := NewRegisterUserHandler(a.Repo).WithActivitySink(a.Activity)
	err := register.Execute(ctx.Context(), RegisterUserMessage{
		Email:      payload.Email,
		Password:   payload.Password,
		AdminEmail: a.AdminEmail,
	})
	if err != nil {
		if TextCode(err) == TextCodeDuplicateIdentity {
			return ctx.JSON(router.StatusBadRequest, map[string]string{
				"error": "Email already in use",
			})
		}
		a.Logger.Error("signup failed", "error", err)
		return a.internalError(ctx)
	}

	user := register.User()
	token, err := a.Auther.TokenService().Generate(identityFromUser(user))
	if err != nil {
		a.Logger.Error("signup token generation failed", "error", err)
		return a.internalError(ctx)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"token":   token,
		"isAdmin": user.Admin,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *APIController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.invalidCredentials(ctx)
	}

	if err := payload.Validate(); err != nil {
		return a.invalidCredentials(ctx)
	}

	token, identity, err := a.Auther.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		switch TextCode(err) {
		case TextCodeUserBanned:
			return ctx.JSON(router.StatusForbidden, map[string]string{
				"error": "User is banned",
			})
		case TextCodeInvalidCredential, TextCodeIdentityNotFound:
			return a.invalidCredentials(ctx)
		}
		a.Logger.Error("login failed", "error", err)
		return a.internalError(ctx)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"token":   token,
		"isAdmin": identity.IsAdmin(),
	})
}

func (a *APIController) ListCategories(ctx router.Context) error {
	records, err := a.Repo.Categories().List(ctx.Context())
	if err != nil {
		a.Logger.Error("list categories failed", "error", err)
		return a.internalError(ctx)
	}

	out := make([]map[string]any, 0, len(records))
	for _, cat := range records {
		out = append(out, map[string]any{
			"id":   cat.ID,
			"name": cat.Name,
		})
	}

	return ctx.JSON(router.StatusOK, out)
}

func (a *APIController) ListPosts(ctx router.Context) error {
	categoryID, err := uuid.Parse(ctx.Param("categoryId"))
	if err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "Invalid category id",
		})
	}

	records, err := a.Repo.Posts().ListByCategory(ctx.Context(), categoryID)
	if err != nil {
		a.Logger.Error("list posts failed", "error", err)
		return a.internalError(ctx)
	}

	out := make([]map[string]any, 0, len(records))
	for _, post := range records {
		out = append(out, postJSON(post))
	}

	return ctx.JSON(router.StatusOK, out)
}

func (a *APIController) ShowPost(ctx router.Context) error {
	postID, err := uuid.Parse(ctx.Param("postId"))
	if err != nil {
		return ctx.JSON(router.StatusNotFound, map[string]string{
			"error": "Post not found",
		})
	}

	post, err := a.Repo.Posts().GetWithAuthor(ctx.Context(), postID)
	if err != nil {
		if errorIsNotFound(err) {
			return ctx.JSON(router.StatusNotFound, map[string]string{
				"error": "Post not found",
			})
		}
		a.Logger.Error("show post failed", "error", err)
		return a.internalError(ctx)
	}

	thread, err := a.Repo.Replies().ListByPost(ctx.Context(), postID)
	if err != nil {
		a.Logger.Error("show post replies failed", "error", err)
		return a.internalError(ctx)
	}

	replies := make([]map[string]any, 0, len(thread))
	for _, reply := range thread {
		replies = append(replies, replyJSON(reply))
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"post":    postJSON(post),
		"replies": replies,
	})
}

// CreatePostRequest payload
type CreatePostRequest struct {
	CategoryID string `json:"categoryId" form:"categoryId"`
	Title      string `json:"title" form:"title"`
	Content    string `json:"content" form:"content"`
	ImageURL   string `json:"imageUrl" form:"imageUrl"`
}

func (r CreatePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CategoryID, validation.Required, is.UUID),
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Content, validation.Required),
	)
}

func (a *APIController) CreatePost(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, a.ContextKey)
	if !ok {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "Invalid token",
		})
	}

	payload := new(CreatePostRequest)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "Category, title and content required",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "Category, title and content required",
		})
	}

	userID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "Invalid token",
		})
	}

	post := &Post{
		UserID:     userID,
		CategoryID: uuid.MustParse(payload.CategoryID),
		Title:      payload.Title,
		Content:    payload.Content,
		ImageURL:   payload.ImageURL,
	}

	record, err := a.Repo.Posts().Publish(ctx.Context(), post)
	if err != nil {
		a.Logger.Error("create post failed", "error", err)
		return a.internalError(ctx)
	}

	return ctx.JSON(router.StatusOK, postJSON(record))
}

// CreateReplyRequest payload
type CreateReplyRequest struct {
	Content  string `json:"content" form:"content"`
	ImageURL string `json:"imageUrl" form:"imageUrl"`
}

func (r CreateReplyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required),
	)
}

func (a *APIController) CreateReply(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, a.ContextKey)
	if !ok {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "Invalid token",
		})
	}

	postID, err := uuid.Parse(ctx.Param("postId"))
	if err != nil {
		return ctx.JSON(router.StatusNotFound, map[string]string{
			"error": "Post not found",
		})
	}

	payload := new(CreateReplyRequest)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "Content required",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "Content required",
		})
	}

	if _, err := a.Repo.Posts().GetWithAuthor(ctx.Context(), postID); err != nil {
		if errorIsNotFound(err) {
			return ctx.JSON(router.StatusNotFound, map[string]string{
				"error": "Post not found",
			})
		}
		a.Logger.Error("create reply lookup failed", "error", err)
		return a.internalError(ctx)
	}

	userID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "Invalid token",
		})
	}

	reply := &Reply{
		PostID:   postID,
		UserID:   userID,
		Content:  payload.Content,
		ImageURL: payload.ImageURL,
	}

	record, err := a.Repo.Replies().Publish(ctx.Context(), reply)
	if err != nil {
		a.Logger.Error("create reply failed", "error", err)
		return a.internalError(ctx)
	}

	return ctx.JSON(router.StatusOK, replyJSON(record))
}

func (a *APIController) DeletePost(ctx router.Context) error {
	postID, err := uuid.Parse(ctx.Param("postId"))
	if err != nil {
		return ctx.JSON(router.StatusNotFound, map[string]string{
			"error": "Post not found",
		})
	}

	// replies and the post go in one transaction so a failure mid-way
	// cannot orphan the thread
	err = a.Repo.RunInTx(ctx.Context(), nil, func(c context.Context, tx bun.Tx) error {
		return a.Repo.Posts().DeleteByIDTx(c, tx, postID)
	})
	if err != nil {
		a.Logger.Error("delete post failed", "error", err)
		return a.internalError(ctx)
	}

	a.recordActivity(ctx, ActivityEventPostDeleted, postID.String())

	return ctx.JSON(router.StatusOK, map[string]any{
		"success": true,
	})
}

func (a *APIController) DeleteReply(ctx router.Context) error {
	replyID, err := uuid.Parse(ctx.Param("replyId"))
	if err != nil {
		return ctx.JSON(router.StatusNotFound, map[string]string{
			"error": "Reply not found",
		})
	}

	if err := a.Repo.Replies().DeleteByID(ctx.Context(), replyID); err != nil {
		a.Logger.Error("delete reply failed", "error", err)
		return a.internalError(ctx)
	}

	a.recordActivity(ctx, ActivityEventReplyDeleted, replyID.String())

	return ctx.JSON(router.StatusOK, map[string]any{
		"success": true,
	})
}

func (a *APIController) BanUser(ctx router.Context) error {
	userID, err := uuid.Parse(ctx.Param("userId"))
	if err != nil {
		return ctx.JSON(router.StatusNotFound, map[string]string{
			"error": "User not found",
		})
	}

	ban := NewBanUserHandler(a.Repo).WithActivitySink(a.Activity)
	if err := ban.Execute(ctx.Context(), BanUserMessage{UserID: userID, Banned: true}); err != nil {
		if TextCode(err) == TextCodeIdentityNotFound {
			return ctx.JSON(router.StatusNotFound, map[string]string{
				"error": "User not found",
			})
		}
		a.Logger.Error("ban user failed", "error", err)
		return a.internalError(ctx)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"success": true,
	})
}

func (a *APIController) recordActivity(ctx router.Context, eventType ActivityEventType, objectID string) {
	claims, _ := GetRouterClaims(ctx, a.ContextKey)

	actor := ""
	if claims != nil {
		actor = claims.UserID()
	}

	event := ActivityEvent{
		EventType:  eventType,
		UserID:     actor,
		Metadata:   map[string]any{"object_id": objectID},
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(a.Activity).Record(ctx.Context(), event); err != nil {
		a.Logger.Warn("activity sink record error", "error", err)
	}
}

func (a *APIController) invalidCredentials(ctx router.Context) error {
	return ctx.JSON(router.StatusBadRequest, map[string]string{
		"error": "Invalid email or password",
	})
}

func (a *APIController) internalError(ctx router.Context) error {
	return ctx.JSON(router.StatusInternalServerError, map[string]string{
		"error": "Internal server error",
	})
}

func postJSON(post *Post) map[string]any {
	return map[string]any{
		"id":          post.ID,
		"categoryId":  post.CategoryID,
		"userId":      post.UserID,
		"title":       post.Title,
		"content":     post.Content,
		"imageUrl":    post.ImageURL,
		"createdAt":   post.CreatedAt,
		"authorEmail": post.AuthorEmail(),
	}
}

func replyJSON(reply *Reply) map[string]any {
	return map[string]any{
		"id":          reply.ID,
		"postId":      reply.PostID,
		"userId":      reply.UserID,
		"content":     reply.Content,
		"imageUrl":    reply.ImageURL,
		"createdAt":   reply.CreatedAt,
		"authorEmail": reply.AuthorEmail(),
	}
}
