package forum

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the identity record. PasswordHash never leaves the server; IsAdmin
// is set once at creation by matching the configured admin email and no
// exposed operation mutates it afterwards.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Admin         bool       `bun:"is_admin,notnull,default:false" json:"is_admin"`
	Banned        bool       `bun:"is_banned,notnull,default:false" json:"is_banned"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Category groups posts
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:cat"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Post is a top level thread inside a category
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:pst"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	CategoryID    uuid.UUID  `bun:"category_id,notnull,type:uuid" json:"category_id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	Content       string     `bun:"content,notnull" json:"content,omitempty"`
	ImageURL      string     `bun:"image_url" json:"image_url,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`

	Author   *User     `bun:"rel:belongs-to,join:user_id=id" json:"-"`
	Category *Category `bun:"rel:belongs-to,join:category_id=id" json:"-"`
}

// AuthorEmail is what list and detail responses expose about the author.
func (p *Post) AuthorEmail() string {
	if p.Author == nil {
		return ""
	}
	return p.Author.Email
}

// Reply is a threaded response to a post
type Reply struct {
	bun.BaseModel `bun:"table:replies,alias:rpl"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	PostID        uuid.UUID  `bun:"post_id,notnull,type:uuid" json:"post_id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Content       string     `bun:"content,notnull" json:"content,omitempty"`
	ImageURL      string     `bun:"image_url" json:"image_url,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`

	Author *User `bun:"rel:belongs-to,join:user_id=id" json:"-"`
	Post   *Post `bun:"rel:belongs-to,join:post_id=id" json:"-"`
}

func (r *Reply) AuthorEmail() string {
	if r.Author == nil {
		return ""
	}
	return r.Author.Email
}
