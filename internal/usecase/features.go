package usecase

import (
	"github.com/rs/zerolog"

	"expense-ltd/internal/domain/model"
)

// PlanFeatures resolves the static feature table for a plan type. Unknown
// plan types resolve to the least privileged tier and log a warning so a bad
// import never hands out the richest entitlement by accident.
func PlanFeatures(plan model.PlanType, log *zerolog.Logger) model.FeatureSet {
	fs, known := model.Features(plan)
	if !known && log != nil {
		log.Warn().Str("plan_type", string(plan)).
			Msg("unknown plan type; defaulting to least privileged tier")
	}
	return fs
}
