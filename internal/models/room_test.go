package models_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"cinematch/backend/internal/models"
)

// TestPairKeySymmetry verifies that the key does not depend on argument order.
func TestPairKeySymmetry(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	assert.Equal(t, models.PairKey(a, b), models.PairKey(b, a))
	assert.NotEqual(t, models.PairKey(a, b), models.PairKey(a, uuid.New()))
}

// TestPairKeyFormat pins down the canonical layout: lesser UUID first.
func TestPairKeyFormat(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	expected := a.String() + ":" + b.String()
	assert.Equal(t, expected, models.PairKey(a, b))
	assert.Equal(t, expected, models.PairKey(b, a))
}
