package services

import (
	"errors"
	"time"

	"journal-review-api/models"

	"gorm.io/gorm"
)

// RoundService manages review rounds under a submission: sequence-checked
// creation and the in_progress → {completed, cancelled} transitions. It is
// composed by the workflow service and its mutating methods always run inside
// the caller's transaction.
type RoundService struct {
	db *gorm.DB
}

func NewRoundService(db *gorm.DB) *RoundService {
	return &RoundService{db: db}
}

// GetRound returns a single round with its assignments.
func (s *RoundService) GetRound(roundID int) (*models.ReviewRound, error) {
	var round models.ReviewRound
	err := s.db.Preload("Assignments").Where("round_id = ?", roundID).First(&round).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Errf(KindNotFound, "round %d not found", roundID)
		}
		return nil, err
	}
	return &round, nil
}

// ListRounds returns all rounds of a submission in round_number order.
// Insertion order is authoritative and never reinterpreted.
func (s *RoundService) ListRounds(submissionID int) ([]models.ReviewRound, error) {
	var rounds []models.ReviewRound
	err := s.db.Where("submission_id = ?", submissionID).
		Order("round_number ASC").
		Find(&rounds).Error
	if err != nil {
		return nil, err
	}
	return rounds, nil
}

func (s *RoundService) getRoundTx(tx *gorm.DB, roundID int) (*models.ReviewRound, error) {
	var round models.ReviewRound
	err := tx.Where("round_id = ?", roundID).First(&round).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Errf(KindNotFound, "round %d not found", roundID)
		}
		return nil, err
	}
	return &round, nil
}

// createRoundTx creates the next round for a submission. roundNumber must be
// exactly max(existing)+1 and no other round may still be in progress.
func (s *RoundService) createRoundTx(tx *gorm.DB, submissionID, roundNumber int, notes *string) (*models.ReviewRound, error) {
	var maxRound int
	err := tx.Model(&models.ReviewRound{}).
		Where("submission_id = ?", submissionID).
		Select("COALESCE(MAX(round_number), 0)").
		Scan(&maxRound).Error
	if err != nil {
		return nil, err
	}

	if roundNumber != maxRound+1 {
		return nil, Errf(KindSequenceViolation,
			"round number must be %d for submission %d, got %d", maxRound+1, submissionID, roundNumber)
	}

	var openCount int64
	err = tx.Model(&models.ReviewRound{}).
		Where("submission_id = ? AND status = ?", submissionID, models.RoundInProgress).
		Count(&openCount).Error
	if err != nil {
		return nil, err
	}
	if openCount > 0 {
		return nil, Errf(KindInvalidState,
			"submission %d already has a round in progress", submissionID)
	}

	round := models.ReviewRound{
		SubmissionID: submissionID,
		RoundNumber:  roundNumber,
		Status:       models.RoundInProgress,
		StartDate:    time.Now(),
		EditorNotes:  notes,
	}
	if err := tx.Create(&round).Error; err != nil {
		return nil, err
	}
	return &round, nil
}

// closeRoundTx moves a round to completed or cancelled. Those states are
// terminal; any other transition is rejected. EndDate is stamped here and
// nowhere else.
func (s *RoundService) closeRoundTx(tx *gorm.DB, round *models.ReviewRound, next models.RoundStatus, notes *string) error {
	if !models.ValidRoundStatus(next) {
		return Errf(KindIllegalTransition, "unknown round status %q", next)
	}
	if !round.Status.CanTransition(next) {
		return Errf(KindIllegalTransition,
			"round %d cannot move from %s to %s", round.RoundID, round.Status, next)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":   next,
		"end_date": now,
	}
	if notes != nil {
		updates["editor_notes"] = *notes
	}
	err := tx.Model(&models.ReviewRound{}).
		Where("round_id = ?", round.RoundID).
		Updates(updates).Error
	if err != nil {
		return err
	}

	round.Status = next
	round.EndDate = &now
	if notes != nil {
		round.EditorNotes = notes
	}
	return nil
}

// latestCompletedRoundTx returns the most recent completed round of a
// submission, or nil when none exists.
func (s *RoundService) latestCompletedRoundTx(tx *gorm.DB, submissionID int) (*models.ReviewRound, error) {
	var round models.ReviewRound
	err := tx.Where("submission_id = ? AND status = ?", submissionID, models.RoundCompleted).
		Order("round_number DESC").
		First(&round).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &round, nil
}

func (s *RoundService) openRoundCountTx(tx *gorm.DB, submissionID int) (int64, error) {
	var count int64
	err := tx.Model(&models.ReviewRound{}).
		Where("submission_id = ? AND status = ?", submissionID, models.RoundInProgress).
		Count(&count).Error
	return count, err
}
