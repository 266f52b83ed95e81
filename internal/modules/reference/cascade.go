package reference

import (
	"anoa.com/indieplatform/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cascade deletes every comment, like, notification and report pointing at refs, and
// recursively everything pointing at those comments. The refs themselves are left to
// the caller. tx must be the transaction that deletes them.
func Cascade(tx *gorm.DB, refs ...entity.Ref) error {
	queue := append([]entity.Ref(nil), refs...)
	seen := make(map[entity.Ref]bool, len(refs))
	var dependents []uuid.UUID

	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		if seen[ref] {
			continue
		}
		seen[ref] = true

		q := tx.Model(&entity.Comment{}).Where("target_type = ? AND target_id = ?", ref.Kind, ref.ID)
		if ref.Kind == entity.KindComment {
			q = q.Or("parent_id = ?", ref.ID)
		}

		var ids []uuid.UUID
		if err := q.Pluck("id", &ids).Error; err != nil {
			return err
		}
		for _, id := range ids {
			child := entity.Ref{Kind: entity.KindComment, ID: id}
			if !seen[child] {
				dependents = append(dependents, id)
				queue = append(queue, child)
			}
		}

		if err := deleteAttached(tx, ref); err != nil {
			return err
		}
	}

	if len(dependents) == 0 {
		return nil
	}
	return tx.Where("id IN ?", dependents).Delete(&entity.Comment{}).Error
}

func deleteAttached(tx *gorm.DB, ref entity.Ref) error {
	for _, model := range []any{&entity.Like{}, &entity.Notification{}, &entity.Report{}} {
		if err := tx.Where("target_type = ? AND target_id = ?", ref.Kind, ref.ID).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
