package model

// Permission names a single capability a role may grant.
type Permission string

const (
	PermCreatePost    Permission = "create_post"
	PermEditPost      Permission = "edit_post"
	PermDeletePost    Permission = "delete_post"
	PermViewComment   Permission = "view_comment"
	PermPostComment   Permission = "post_comment"
	PermDeleteComment Permission = "delete_comment"
)

// Well-known role names seeded at first start.
const (
	RoleAdministrator = "administrator"
	RoleEditor        = "editor"
	RoleStandardUser  = "standard user"
)

type User struct {
	Id           int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	Username     string `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"`
	Role         string `json:"role" gorm:"not null;index"`
}

type Role struct {
	Id          int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`

	CanCreatePost    bool `json:"canCreatePost" gorm:"default:false"`
	CanEditPost      bool `json:"canEditPost" gorm:"default:false"`
	CanDeletePost    bool `json:"canDeletePost" gorm:"default:false"`
	CanViewComment   bool `json:"canViewComment" gorm:"default:false"`
	CanPostComment   bool `json:"canPostComment" gorm:"default:false"`
	CanDeleteComment bool `json:"canDeleteComment" gorm:"default:false"`
}

// PermissionSet is the resolved set of capabilities a role grants.
type PermissionSet map[Permission]bool

// Permissions expands the role's flags into a PermissionSet.
func (r *Role) Permissions() PermissionSet {
	return PermissionSet{
		PermCreatePost:    r.CanCreatePost,
		PermEditPost:      r.CanEditPost,
		PermDeletePost:    r.CanDeletePost,
		PermViewComment:   r.CanViewComment,
		PermPostComment:   r.CanPostComment,
		PermDeleteComment: r.CanDeleteComment,
	}
}

// HasAll reports whether the set is a superset of the required permissions.
func (s PermissionSet) HasAll(required ...Permission) bool {
	for _, p := range required {
		if !s[p] {
			return false
		}
	}
	return true
}

type Post struct {
	Id           int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Title        string `json:"title" gorm:"uniqueIndex;not null"`
	Subtitle     string `json:"subtitle" gorm:"not null"`
	Body         string `json:"body" gorm:"not null"`
	ImgURL       string `json:"imgUrl" gorm:"column:img_url"`
	CreationDate string `json:"creationDate" gorm:"not null"`

	AuthorId int   `json:"authorId" gorm:"not null;index"`
	Author   *User `json:"author,omitempty" gorm:"foreignKey:AuthorId"`

	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:PostId"`
}

type Comment struct {
	Id   int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Text string `json:"text" gorm:"not null"`

	AuthorId int   `json:"authorId" gorm:"not null;index"`
	Author   *User `json:"author,omitempty" gorm:"foreignKey:AuthorId"`

	PostId int `json:"postId" gorm:"not null;index"`
}

type Setting struct {
	Id    int    `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Key   string `json:"key" form:"key" gorm:"uniqueIndex"`
	Value string `json:"value" form:"value"`
}
