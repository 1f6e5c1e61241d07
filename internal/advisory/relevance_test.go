package advisory

import (
	"testing"

	"github.com/croplink/agrimart/internal/domain"
	"github.com/croplink/agrimart/pkg/common"
)

func punjabFarmer() *domain.User {
	return &domain.User{
		State:    "Punjab",
		District: "Ludhiana",
		Crops:    common.ToJSON([]string{"Basmati Rice", "Wheat"}),
		SoilType: "alluvial",
		FarmSize: 4.5,
	}
}

func TestRelevantForUserNoConstraints(t *testing.T) {
	a := &domain.CropAdvisory{}
	if !RelevantForUser(a, punjabFarmer()) {
		t.Error("advisory without constraints must match every user")
	}
}

func TestRelevantForUserRegion(t *testing.T) {
	a := &domain.CropAdvisory{
		Regions: common.ToJSON([]domain.Region{{State: "Punjab"}}),
	}
	if !RelevantForUser(a, punjabFarmer()) {
		t.Error("state-wide region should match a Punjab user")
	}

	u := punjabFarmer()
	u.State = "Gujarat"
	if RelevantForUser(a, u) {
		t.Error("Gujarat user must not match a Punjab-only advisory")
	}

	// State comparison is case-insensitive.
	u = punjabFarmer()
	u.State = "punjab"
	if !RelevantForUser(a, u) {
		t.Error("state match must be case-insensitive")
	}
}

func TestRelevantForUserDistrictRefinement(t *testing.T) {
	a := &domain.CropAdvisory{
		Regions: common.ToJSON([]domain.Region{{State: "Punjab", Districts: []string{"Ludhiana", "Patiala"}}}),
	}
	if !RelevantForUser(a, punjabFarmer()) {
		t.Error("listed district should match")
	}

	u := punjabFarmer()
	u.District = "Amritsar"
	if RelevantForUser(a, u) {
		t.Error("unlisted district must not match")
	}
}

func TestRelevantForUserCropSubstring(t *testing.T) {
	// Advisory targets "rice"; the user grows "Basmati Rice".
	a := &domain.CropAdvisory{TargetCrops: common.ToJSON([]string{"rice"})}
	if !RelevantForUser(a, punjabFarmer()) {
		t.Error("user crop containing the target crop should match")
	}

	// The reverse direction: advisory targets "basmati rice", user grows "rice".
	a = &domain.CropAdvisory{TargetCrops: common.ToJSON([]string{"basmati rice"})}
	u := punjabFarmer()
	u.Crops = common.ToJSON([]string{"Rice"})
	if !RelevantForUser(a, u) {
		t.Error("target crop containing the user crop should match")
	}

	a = &domain.CropAdvisory{TargetCrops: common.ToJSON([]string{"cotton"})}
	if RelevantForUser(a, punjabFarmer()) {
		t.Error("unrelated crop must not match")
	}
}

func TestRelevantForUserSoil(t *testing.T) {
	a := &domain.CropAdvisory{SoilTypes: common.ToJSON([]string{"alluvial", "loamy"})}
	if !RelevantForUser(a, punjabFarmer()) {
		t.Error("matching soil type should pass")
	}

	u := punjabFarmer()
	u.SoilType = "black"
	if RelevantForUser(a, u) {
		t.Error("non-listed soil type must not match")
	}
}

func TestRelevantForUserFarmSize(t *testing.T) {
	min, max := 2.0, 10.0
	a := &domain.CropAdvisory{FarmSizeMin: &min, FarmSizeMax: &max}
	if !RelevantForUser(a, punjabFarmer()) {
		t.Error("farm size inside the range should pass")
	}

	u := punjabFarmer()
	u.FarmSize = 1.0
	if RelevantForUser(a, u) {
		t.Error("farm below the minimum must not match")
	}

	u.FarmSize = 12.0
	if RelevantForUser(a, u) {
		t.Error("farm above the maximum must not match")
	}

	// An unset farm size never excludes the user.
	u.FarmSize = 0
	if !RelevantForUser(a, u) {
		t.Error("unset farm size should pass any size constraint")
	}
}
