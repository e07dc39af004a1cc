package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"notification-service/internal/domain"
	"notification-service/internal/xerrors"
)

// resolvePreferences loads the recipient's channel preferences, falling
// back to the documented defaults when no record exists. A storage failure
// also falls back to defaults: suppressing a notification incorrectly is
// worse than sending one that should have been time-delayed. Channel send
// failures do not get this treatment.
func (uc *DispatchUsecase) resolvePreferences(ctx context.Context, job *domain.Job) *domain.Preferences {
	prefs, err := uc.repo.GetPreferences(ctx, job.TenantID, job.RecipientID)
	if err != nil {
		if !errors.Is(err, xerrors.ErrNotFound) {
			uc.logger.Warn("Preference lookup failed, using defaults",
				zap.String("recipient", job.RecipientID),
				zap.String("tenant", job.TenantID),
				zap.Error(err),
			)
		}
		return domain.DefaultPreferences(job.TenantID, job.RecipientID)
	}
	return prefs
}
