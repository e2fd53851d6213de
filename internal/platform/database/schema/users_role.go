package schema

// UserRoleTable represents the 'users.role' table
type UserRoleTable struct {
	Table       string
	ID          string
	Name        string
	Description string
	CreatedAt   string
}

// UserRole is the schema definition for users.role
var UserRole = UserRoleTable{
	Table:       "users.role",
	ID:          "id",
	Name:        "name",
	Description: "description",
	CreatedAt:   "createdat",
}

// UserPermissionTable represents the 'users.permission' table
type UserPermissionTable struct {
	Table        string
	ID           string
	Name         string
	ResourceType string
	Description  string
	CreatedAt    string
}

// UserPermission is the schema definition for users.permission
var UserPermission = UserPermissionTable{
	Table:        "users.permission",
	ID:           "id",
	Name:         "name",
	ResourceType: "resourcetype",
	Description:  "description",
	CreatedAt:    "createdat",
}

// RolePermissionTable represents the 'users.rolepermission' join table
type RolePermissionTable struct {
	Table        string
	RoleID       string
	PermissionID string
	GrantedAt    string
}

// RolePermission is the schema definition for users.rolepermission
var RolePermission = RolePermissionTable{
	Table:        "users.rolepermission",
	RoleID:       "roleid",
	PermissionID: "permissionid",
	GrantedAt:    "grantedat",
}

// AccountRoleTable represents the 'users.accountrole' join table
type AccountRoleTable struct {
	Table     string
	UserID    string
	RoleID    string
	GrantedAt string
	GrantedBy string
}

// AccountRole is the schema definition for users.accountrole
var AccountRole = AccountRoleTable{
	Table:     "users.accountrole",
	UserID:    "userid",
	RoleID:    "roleid",
	GrantedAt: "grantedat",
	GrantedBy: "grantedby",
}

// AccountPermissionTable represents the 'users.accountpermission' join table
// for direct grants, optionally scoped to a resource.
type AccountPermissionTable struct {
	Table        string
	UserID       string
	PermissionID string
	ResourceID   string
	GrantedAt    string
	GrantedBy    string
}

// AccountPermission is the schema definition for users.accountpermission
var AccountPermission = AccountPermissionTable{
	Table:        "users.accountpermission",
	UserID:       "userid",
	PermissionID: "permissionid",
	ResourceID:   "resourceid",
	GrantedAt:    "grantedat",
	GrantedBy:    "grantedby",
}
