package entity

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind names the store a polymorphic reference points into. Values are persisted in
// target_type columns and must never be renamed.
type Kind string

const (
	KindGame    Kind = "game"
	KindPost    Kind = "post"
	KindReview  Kind = "review"
	KindComment Kind = "comment"
	KindUser    Kind = "user"
)

// Ref is a (kind, id) pair addressing any referable entity.
type Ref struct {
	Kind Kind      `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

func (r Ref) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}

// Referable is implemented by every entity that comments, likes, notifications and
// reports may attach to.
type Referable interface {
	Reference() Ref
}

func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindGame, KindPost, KindReview, KindComment, KindUser:
		return k, true
	}
	return "", false
}
