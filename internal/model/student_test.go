package model

import "testing"

func TestValidMajor(t *testing.T) {
	for _, m := range []string{MajorInfo, MajorMaths, MajorComm, MajorAgro} {
		if !ValidMajor(m) {
			t.Errorf("%s should be valid", m)
		}
	}
	for _, m := range []string{"", "info", "PHYSICS"} {
		if ValidMajor(m) {
			t.Errorf("%q should be invalid", m)
		}
	}
}

func TestLevelOrdinals(t *testing.T) {
	for n := LevelL1; n <= LevelM2; n++ {
		if !ValidLevel(n) {
			t.Errorf("level %d should be valid", n)
		}
		if LevelLabel(n) == "" {
			t.Errorf("level %d should have a label", n)
		}
	}
	if ValidLevel(0) || ValidLevel(6) {
		t.Error("out-of-range ordinals should be invalid")
	}
	if LevelLabel(0) != "" {
		t.Error("out-of-range ordinal should have empty label")
	}
}

func TestValidBuilding(t *testing.T) {
	for _, b := range []string{BuildingRG1, BuildingRF2, BuildingRG3, BuildingRF4, BuildingRM1, BuildingRGZ} {
		if !ValidBuilding(b) {
			t.Errorf("%s should be valid", b)
		}
	}
	if ValidBuilding("R+G9") || ValidBuilding("") {
		t.Error("unknown building should be invalid")
	}
}
