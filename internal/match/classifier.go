// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import "github.com/Ad1th/Reference-Halucinations/pkg/types"

// Classify maps a matcher outcome to the externally visible label. Pure
// function of its inputs; the cutoffs come from cfg (defaults shown):
//
//	FOUND                              -> VERIFIED
//	AMBIGUOUS                          -> REVIEW
//	LOW_CONFIDENCE, confidence > 0.4   -> REVIEW
//	LOW_CONFIDENCE, otherwise          -> UNVERIFIED
//	NOT_FOUND, <=4 words, conf < 0.3   -> SUSPICIOUS
//	NOT_FOUND, otherwise               -> UNVERIFIED
//	NOT_CHECKED                        -> UNVERIFIED
//
// A short title that found nothing is the hallucination signature: short
// generic phrases match something in the index almost by accident, so a
// total miss is suspicious rather than merely unverified.
func Classify(status types.MatchStatus, confidence float64, titleWords int, cfg types.MatcherConfig) types.Label {
	switch status {
	case types.StatusFound:
		return types.LabelVerified
	case types.StatusAmbiguous:
		return types.LabelReview
	case types.StatusLowConfidence:
		if confidence > cfg.LowConfidenceReview {
			return types.LabelReview
		}
		return types.LabelUnverified
	case types.StatusNotFound:
		if titleWords <= cfg.ShortTitleWords && confidence < cfg.SuspiciousConfidence {
			return types.LabelSuspicious
		}
		return types.LabelUnverified
	}
	return types.LabelUnverified
}
