package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/storelocator/internal/model"
)

func TestMemberList(t *testing.T) {
	db := setupDB(t)
	h := NewMemberHandler(db)

	brand := seedBrand(t, db, "Team", "owner_1")
	seedMember(t, db, brand.ID, "member_1", model.RoleMember)

	c, rec := newContext(t, http.MethodGet, "/brands/1/members", nil)
	asUser(c, "member_1")
	setBrandParam(c, brand.ID)
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var members []model.BrandMember
	decodeBody(t, rec, &members)
	require.Len(t, members, 2)
	assert.Equal(t, "owner_1", members[0].UserID)
	assert.Equal(t, "member_1", members[1].UserID)
}

func TestMemberListForbiddenForNonMember(t *testing.T) {
	db := setupDB(t)
	h := NewMemberHandler(db)

	brand := seedBrand(t, db, "Team", "owner_1")

	c, rec := newContext(t, http.MethodGet, "/brands/1/members", nil)
	asUser(c, "stranger")
	setBrandParam(c, brand.ID)
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMemberAddRequiresAdmin(t *testing.T) {
	db := setupDB(t)
	h := NewMemberHandler(db)

	brand := seedBrand(t, db, "Team", "owner_1")
	seedMember(t, db, brand.ID, "member_1", model.RoleMember)

	// A plain member may not invite.
	c, rec := newContext(t, http.MethodPost, "/brands/1/members", map[string]interface{}{"userId": "new_1"})
	asUser(c, "member_1")
	setBrandParam(c, brand.ID)
	require.NoError(t, h.Add(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Promote to admin; the same call now succeeds.
	require.NoError(t, db.Model(&model.BrandMember{}).
		Where("brand_id = ? AND user_id = ?", brand.ID, "member_1").
		Update("role", model.RoleAdmin).Error)

	c2, rec2 := newContext(t, http.MethodPost, "/brands/1/members", map[string]interface{}{"userId": "new_1"})
	asUser(c2, "member_1")
	setBrandParam(c2, brand.ID)
	require.NoError(t, h.Add(c2))
	assert.Equal(t, http.StatusCreated, rec2.Code)
}

func TestMemberAddDefaultsAndMetadata(t *testing.T) {
	db := setupDB(t)
	h := NewMemberHandler(db)

	brand := seedBrand(t, db, "Team", "owner_1")

	c, rec := newContext(t, http.MethodPost, "/brands/1/members", map[string]interface{}{"userId": "new_1"})
	asUser(c, "owner_1")
	setBrandParam(c, brand.ID)
	require.NoError(t, h.Add(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var member model.BrandMember
	decodeBody(t, rec, &member)
	assert.Equal(t, model.RoleMember, member.Role)
	assert.Equal(t, "owner_1", member.InvitedBy)
	assert.NotNil(t, member.AcceptedAt)
}

func TestMemberAddDuplicateConflict(t *testing.T) {
	db := setupDB(t)
	h := NewMemberHandler(db)

	brand := seedBrand(t, db, "Team", "owner_1")
	seedMember(t, db, brand.ID, "member_1", model.RoleMember)

	c, rec := newContext(t, http.MethodPost, "/brands/1/members", map[string]interface{}{"userId": "member_1"})
	asUser(c, "owner_1")
	setBrandParam(c, brand.ID)
	require.NoError(t, h.Add(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMemberAddValidation(t *testing.T) {
	db := setupDB(t)
	h := NewMemberHandler(db)

	brand := seedBrand(t, db, "Team", "owner_1")

	c, rec := newContext(t, http.MethodPost, "/brands/1/members", map[string]interface{}{"role": "member"})
	asUser(c, "owner_1")
	setBrandParam(c, brand.ID)
	require.NoError(t, h.Add(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c2, rec2 := newContext(t, http.MethodPost, "/brands/1/members",
		map[string]interface{}{"userId": "new_1", "role": "superuser"})
	asUser(c2, "owner_1")
	setBrandParam(c2, brand.ID)
	require.NoError(t, h.Add(c2))
	assert.Equal(t, http.StatusBadRequest, rec2.Code)
}

func TestMemberUpdateRole(t *testing.T) {
	db := setupDB(t)
	h := NewMemberHandler(db)

	brand := seedBrand(t, db, "Team", "owner_1")
	seedMember(t, db, brand.ID, "member_1", model.RoleMember)

	c, rec := newContext(t, http.MethodPut, "/brands/1/members/member_1",
		map[string]interface{}{"role": "admin"})
	asUser(c, "owner_1")
	setBrandMemberParams(c, brand.ID, "member_1")
	require.NoError(t, h.UpdateRole(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var member model.BrandMember
	require.NoError(t, db.Where("brand_id = ? AND user_id = ?", brand.ID, "member_1").First(&member).Error)
	assert.Equal(t, model.RoleAdmin, member.Role)
}

func TestMemberUpdateRoleNotFound(t *testing.T) {
	db := setupDB(t)
	h := NewMemberHandler(db)

	brand := seedBrand(t, db, "Team", "owner_1")

	c, rec := newContext(t, http.MethodPut, "/brands/1/members/ghost",
		map[string]interface{}{"role": "admin"})
	asUser(c, "owner_1")
	setBrandMemberParams(c, brand.ID, "ghost")
	require.NoError(t, h.UpdateRole(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMemberLastOwnerCannotBeDemoted(t *testing.T) {
	db := setupDB(t)
	h := NewMemberHandler(db)

	brand := seedBrand(t, db, "Team", "owner_1")

	c, rec := newContext(t, http.MethodPut, "/brands/1/members/owner_1",
		map[string]interface{}{"role": "member"})
	asUser(c, "owner_1")
	setBrandMemberParams(c, brand.ID, "owner_1")
	require.NoError(t, h.UpdateRole(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	decodeBody(t, rec, &body)
	assert.Equal(t, "Cannot remove the last owner of the brand", body["error"])

	// With a second owner the demotion goes through.
	seedMember(t, db, brand.ID, "owner_2", model.RoleOwner)

	c2, rec2 := newContext(t, http.MethodPut, "/brands/1/members/owner_1",
		map[string]interface{}{"role": "member"})
	asUser(c2, "owner_2")
	setBrandMemberParams(c2, brand.ID, "owner_1")
	require.NoError(t, h.UpdateRole(c2))
	assert.Equal(t, http.StatusOK, rec2.Code)
}

func TestMemberLastOwnerCannotBeRemoved(t *testing.T) {
	db := setupDB(t)
	h := NewMemberHandler(db)

	brand := seedBrand(t, db, "Team", "owner_1")

	// Not even by themselves.
	c, rec := newContext(t, http.MethodDelete, "/brands/1/members/owner_1", nil)
	asUser(c, "owner_1")
	setBrandMemberParams(c, brand.ID, "owner_1")
	require.NoError(t, h.Remove(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	seedMember(t, db, brand.ID, "owner_2", model.RoleOwner)

	c2, rec2 := newContext(t, http.MethodDelete, "/brands/1/members/owner_1", nil)
	asUser(c2, "owner_2")
	setBrandMemberParams(c2, brand.ID, "owner_1")
	require.NoError(t, h.Remove(c2))
	assert.Equal(t, http.StatusOK, rec2.Code)

	var count int64
	require.NoError(t, db.Model(&model.BrandMember{}).
		Where("brand_id = ? AND user_id = ?", brand.ID, "owner_1").
		Count(&count).Error)
	assert.Zero(t, count)
}

func TestMemberSelfRemoval(t *testing.T) {
	db := setupDB(t)
	h := NewMemberHandler(db)

	brand := seedBrand(t, db, "Team", "owner_1")
	seedMember(t, db, brand.ID, "member_1", model.RoleMember)

	// A plain member can leave on their own.
	c, rec := newContext(t, http.MethodDelete, "/brands/1/members/member_1", nil)
	asUser(c, "member_1")
	setBrandMemberParams(c, brand.ID, "member_1")
	require.NoError(t, h.Remove(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, db.Model(&model.BrandMember{}).
		Where("brand_id = ? AND user_id = ?", brand.ID, "member_1").
		Count(&count).Error)
	assert.Zero(t, count)
}

func TestMemberRemoveRequiresAdmin(t *testing.T) {
	db := setupDB(t)
	h := NewMemberHandler(db)

	brand := seedBrand(t, db, "Team", "owner_1")
	seedMember(t, db, brand.ID, "member_1", model.RoleMember)
	seedMember(t, db, brand.ID, "member_2", model.RoleMember)

	c, rec := newContext(t, http.MethodDelete, "/brands/1/members/member_2", nil)
	asUser(c, "member_1")
	setBrandMemberParams(c, brand.ID, "member_2")
	require.NoError(t, h.Remove(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMemberRemoveNotFound(t *testing.T) {
	db := setupDB(t)
	h := NewMemberHandler(db)

	brand := seedBrand(t, db, "Team", "owner_1")

	c, rec := newContext(t, http.MethodDelete, "/brands/1/members/ghost", nil)
	asUser(c, "owner_1")
	setBrandMemberParams(c, brand.ID, "ghost")
	require.NoError(t, h.Remove(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
