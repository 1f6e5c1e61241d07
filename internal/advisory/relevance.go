package advisory

import (
	"strings"

	"github.com/croplink/agrimart/internal/domain"
	"github.com/croplink/agrimart/pkg/common"
)

// RelevantForUser reports whether an advisory targets this user's profile.
// It is a pure predicate: the AND of independent sub-checks, where an empty
// advisory constraint means "no restriction" and auto-passes.
func RelevantForUser(a *domain.CropAdvisory, u *domain.User) bool {
	return regionMatch(a.RegionList(), u.State, u.District) &&
		cropMatch(a.TargetCropList(), u.CropList()) &&
		soilMatch(a.SoilTypeList(), u.SoilType) &&
		farmSizeMatch(a.FarmSizeMin, a.FarmSizeMax, u.FarmSize)
}

// regionMatch requires the user's state to match a target region; a region
// with districts further requires the user's district to be listed.
func regionMatch(regions []domain.Region, state, district string) bool {
	if len(regions) == 0 {
		return true
	}
	for _, r := range regions {
		if !strings.EqualFold(r.State, state) {
			continue
		}
		if len(r.Districts) == 0 {
			return true
		}
		if common.InStrings(r.Districts, district) {
			return true
		}
	}
	return false
}

// cropMatch accepts any case-insensitive substring overlap in either
// direction, so "basmati rice" matches a "rice" advisory and vice versa.
func cropMatch(targetCrops, userCrops []string) bool {
	if len(targetCrops) == 0 {
		return true
	}
	for _, target := range targetCrops {
		t := strings.ToLower(target)
		for _, crop := range userCrops {
			c := strings.ToLower(crop)
			if strings.Contains(c, t) || strings.Contains(t, c) {
				return true
			}
		}
	}
	return false
}

func soilMatch(soilTypes []string, userSoil string) bool {
	if len(soilTypes) == 0 {
		return true
	}
	return common.InStrings(soilTypes, userSoil)
}

// farmSizeMatch checks range containment; an unset user farm size passes.
func farmSizeMatch(min, max *float64, farmSize float64) bool {
	if farmSize <= 0 {
		return true
	}
	if min != nil && farmSize < *min {
		return false
	}
	if max != nil && farmSize > *max {
		return false
	}
	return true
}
