package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	domainerrors "github.com/itsmingjie/sveltesociety.dev/internal/errors"
)

func TestSentinelsAreDomainErrors(t *testing.T) {
	assert.True(t, domainerrors.Is(ErrNotFound, domainerrors.ErrNotFound))
	assert.True(t, domainerrors.Is(ErrAlreadyExists, domainerrors.ErrAlreadyExists))
	assert.True(t, domainerrors.Is(ErrConflict, domainerrors.ErrConflict))
}

func TestConstraintClassifiers(t *testing.T) {
	unique := errors.New("constraint failed: UNIQUE constraint failed: tags.slug (2067)")
	fk := errors.New("constraint failed: FOREIGN KEY constraint failed (787)")

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(fk))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(nil))
}
