package validate

import (
	"fmt"
	"regexp"

	"github.com/vitrine-app/vitrine/internal/model"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserID must be lowercase letters, digits, underscore or hyphen, 1-32 chars
var userIDRx = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)

func Email(v string) error {
	if v == "" {
		return model.NewValidationError("email", "email is required")
	}
	if len(v) > 320 || !emailRx.MatchString(v) {
		return model.NewValidationError("email", "invalid email")
	}
	return nil
}

func NonEmpty(field, v string) error {
	if v == "" {
		return model.NewValidationError(field, fmt.Sprintf("%s is required", field))
	}
	return nil
}

func MaxLen(field string, v *string, limit int) error {
	if v == nil {
		return nil
	}
	if len(*v) > limit {
		return model.NewValidationError(field, fmt.Sprintf("%s exceeds %d characters", field, limit))
	}
	return nil
}

func UserID(v string) error {
	if v == "" {
		return model.NewValidationError("userId", "userId is required")
	}
	if !userIDRx.MatchString(v) {
		return model.NewValidationError("userId", fmt.Sprintf("userId must match %s", userIDRx.String()))
	}
	return nil
}

// -------- Request specific helpers ----------

// CreateUser validates input for creating a new user.
func CreateUser(userID, email string, displayName *string) error {
	if err := UserID(userID); err != nil {
		return err
	}
	if err := Email(email); err != nil {
		return err
	}
	return MaxLen("displayName", displayName, 100)
}

// CreateCollection checks the request shape; name rules live in the service.
func CreateCollection(name string, kind model.Kind) error {
	if err := NonEmpty("name", name); err != nil {
		return err
	}
	if !kind.Valid() {
		return model.NewValidationError("kind", "kind must be one of watches, sneakers, purses")
	}
	return nil
}

// Grant validates a grant request.
func Grant(collectionID, userID string, role model.Role) error {
	if err := NonEmpty("collectionId", collectionID); err != nil {
		return err
	}
	if err := UserID(userID); err != nil {
		return err
	}
	if !role.Valid() {
		return model.NewValidationError("role", "role must be one of owner, editor, viewer")
	}
	return nil
}
