package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorVariants(t *testing.T) {
	registered := RegisteredAuthor(7)
	assert.True(t, registered.IsRegistered())
	assert.True(t, registered.Complete())

	assert.False(t, RegisteredAuthor(0).Complete(), "zero user id is not a registered author")

	anon := AnonymousAuthor("  A ", "a@x.com ")
	assert.False(t, anon.IsRegistered())
	assert.True(t, anon.Complete())
	assert.Equal(t, "A", anon.Name)
	assert.Equal(t, "a@x.com", anon.Email)

	assert.False(t, AnonymousAuthor("A", "").Complete())
	assert.False(t, AnonymousAuthor("", "a@x.com").Complete())
}

func TestCommentOwnership(t *testing.T) {
	uid := uint(3)
	owned := Comment{UserID: &uid}
	assert.True(t, owned.OwnedBy(3))
	assert.False(t, owned.OwnedBy(4))
	assert.True(t, owned.Author().IsRegistered())

	anon := Comment{UserName: "A", UserEmail: "a@x.com"}
	assert.False(t, anon.OwnedBy(0))
	assert.False(t, anon.OwnedBy(3))
	assert.Equal(t, "A", anon.Author().Name)
}

func TestEnums(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusRejected.Valid())
	assert.False(t, CommentStatus("deleted").Valid())

	assert.True(t, FlagHateSpeech.Valid())
	assert.False(t, FlagReason("boring").Valid())

	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
	var nobody *User
	assert.False(t, nobody.IsAdmin())
}
