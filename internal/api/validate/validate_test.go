package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitrine-app/vitrine/internal/model"
)

func TestCreateUser(t *testing.T) {
	long := strings.Repeat("x", 101)
	cases := []struct {
		name    string
		userID  string
		email   string
		display *string
		wantErr bool
	}{
		{"ok", "alice_1", "alice@example.com", nil, false},
		{"hyphen ok", "bob-smith", "bob@example.com", nil, false},
		{"missing id", "", "a@example.com", nil, true},
		{"uppercase id", "Alice", "a@example.com", nil, true},
		{"id too long", strings.Repeat("a", 33), "a@example.com", nil, true},
		{"bad email", "alice", "not-an-email", nil, true},
		{"missing email", "alice", "", nil, true},
		{"display too long", "alice", "a@example.com", &long, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CreateUser(tc.userID, tc.email, tc.display)
			if tc.wantErr {
				assert.ErrorIs(t, err, model.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateCollection(t *testing.T) {
	assert.NoError(t, CreateCollection("Daily", model.KindWatches))
	assert.ErrorIs(t, CreateCollection("", model.KindWatches), model.ErrValidation)
	assert.ErrorIs(t, CreateCollection("Daily", "hats"), model.ErrValidation)
}

func TestGrant(t *testing.T) {
	assert.NoError(t, Grant("c1", "bob", model.RoleViewer))
	assert.ErrorIs(t, Grant("", "bob", model.RoleViewer), model.ErrValidation)
	assert.ErrorIs(t, Grant("c1", "Bob!", model.RoleViewer), model.ErrValidation)
	assert.ErrorIs(t, Grant("c1", "bob", "admin"), model.ErrValidation)
}
