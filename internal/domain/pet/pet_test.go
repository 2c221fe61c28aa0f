package pet

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawnest/service-marketplace/internal/domain"
)

func newTestPet(t *testing.T) *Pet {
	t.Helper()
	p, err := NewPet(
		uuid.New(), "Biscuit", SpeciesDog, "corgi", 3, 12.5, GenderMale, "tan",
		[]string{"/uploads/biscuit.jpg"}, "", true, false, nil, nil, VetInfo{},
	)
	require.NoError(t, err)
	return p
}

func TestNewPetValidation(t *testing.T) {
	_, err := NewPet(uuid.Nil, "Biscuit", SpeciesDog, "", 0, 0, "", "", nil, "", false, false, nil, nil, VetInfo{})
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = NewPet(uuid.New(), "", SpeciesDog, "", 0, 0, "", "", nil, "", false, false, nil, nil, VetInfo{})
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = NewPet(uuid.New(), "Biscuit", Species("dragon"), "", 0, 0, "", "", nil, "", false, false, nil, nil, VetInfo{})
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = NewPet(uuid.New(), "Biscuit", SpeciesDog, "", -1, 0, "", "", nil, "", false, false, nil, nil, VetInfo{})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestNewPetDefaultsGender(t *testing.T) {
	p, err := NewPet(uuid.New(), "Biscuit", SpeciesCat, "", 1, 4, "", "", nil, "", false, false, nil, nil, VetInfo{})
	require.NoError(t, err)
	assert.Equal(t, GenderUnknown, p.Gender())
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	p := newTestPet(t)
	name := "Waffle"
	age := 4

	require.NoError(t, p.Update(FieldUpdate{Name: &name, AgeYears: &age}))
	assert.Equal(t, "Waffle", p.Name())
	assert.Equal(t, 4, p.AgeYears())
	assert.Equal(t, SpeciesDog, p.Species())
	assert.Equal(t, 12.5, p.WeightKg())
}

func TestUpdateRejectsBadValues(t *testing.T) {
	p := newTestPet(t)

	bad := Species("dragon")
	assert.True(t, domain.IsKind(p.Update(FieldUpdate{Species: &bad}), domain.KindValidation))

	negative := -2
	assert.True(t, domain.IsKind(p.Update(FieldUpdate{AgeYears: &negative}), domain.KindValidation))
}

func TestPhotoOperations(t *testing.T) {
	p := newTestPet(t)

	p.AppendPhotos([]string{"/uploads/a.jpg", "/uploads/b.jpg"})
	require.Len(t, p.PhotoURLs(), 3)

	removed, err := p.RemovePhotoAt(1)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/a.jpg", removed)
	assert.Len(t, p.PhotoURLs(), 2)

	_, err = p.RemovePhotoAt(5)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	_, err = p.RemovePhotoAt(-1)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	evicted := p.ReplacePhotos([]string{"/uploads/new.jpg"})
	assert.Len(t, evicted, 2)
	assert.Equal(t, []string{"/uploads/new.jpg"}, p.PhotoURLs())
}

func TestArchiveIsIdempotent(t *testing.T) {
	p := newTestPet(t)
	require.True(t, p.IsActive())

	p.Archive()
	assert.False(t, p.IsActive())
	version := p.Version()

	p.Archive()
	assert.False(t, p.IsActive())
	assert.Equal(t, version, p.Version())
}
