package enums

type Role string

const (
	RoleNormal  Role = "normal"
	RoleCreator Role = "creator"
	RoleAdmin   Role = "admin"
)

func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleNormal, RoleCreator, RoleAdmin:
		return Role(value), true
	default:
		return "", false
	}
}
