package schema

// UserSessionTable represents the 'users.session' table.
//
// Rows are an audit trail of issued session tokens; token validation is
// purely cryptographic and never consults this table.
type UserSessionTable struct {
	Table     string
	ID        string
	UserID    string
	UserAgent string
	IPAddress string
	IssuedAt  string
	ExpiresAt string
}

// UserSession is the schema definition for users.session
var UserSession = UserSessionTable{
	Table:     "users.session",
	ID:        "id",
	UserID:    "userid",
	UserAgent: "useragent",
	IPAddress: "ipaddress",
	IssuedAt:  "issuedat",
	ExpiresAt: "expiresat",
}
