package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Upsert stores the voter's current vote and returns the comment's new total.
// The vote row and the cached total change together or not at all.
func (r *VoteRepository) Upsert(ctx context.Context, commentID, userID uuid.UUID, voteType int) (int, error) {
	var total int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vote := &domain.CommentVote{
			CommentID: commentID,
			UserID:    userID,
			VoteType:  voteType,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "comment_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"vote_type", "updated_at"}),
		}).Create(vote).Error
		if err != nil {
			return err
		}

		total, err = recomputeVotes(tx, commentID)
		return err
	})
	return total, err
}

// Remove drops the voter's vote, if any, and returns the new total.
func (r *VoteRepository) Remove(ctx context.Context, commentID, userID uuid.UUID) (int, error) {
	var total int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).
			Delete(&domain.CommentVote{}).Error
		if err != nil {
			return err
		}

		total, err = recomputeVotes(tx, commentID)
		return err
	})
	return total, err
}

// VotesByUser maps comment id to the user's vote for the given comments.
func (r *VoteRepository) VotesByUser(ctx context.Context, userID uuid.UUID, commentIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	result := make(map[uuid.UUID]int)
	if len(commentIDs) == 0 {
		return result, nil
	}

	var votes []domain.CommentVote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	for _, v := range votes {
		result[v.CommentID] = v.VoteType
	}
	return result, nil
}

func recomputeVotes(tx *gorm.DB, commentID uuid.UUID) (int, error) {
	var total int64
	err := tx.Model(&domain.CommentVote{}).
		Select("COALESCE(SUM(vote_type), 0)").
		Where("comment_id = ?", commentID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}

	err = tx.Model(&domain.Comment{}).
		Where("id = ?", commentID).
		UpdateColumn("votes", total).Error
	return int(total), err
}
