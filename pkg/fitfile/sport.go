package fitfile

import (
	"strings"

	"training-os-be/internal/entity"
)

// MapSportToType folds FIT sport and sub-sport names into a session type.
func MapSportToType(sport, subSport string) entity.SessionType {
	sport = strings.ToLower(strings.TrimSpace(sport))
	subSport = strings.ToLower(strings.TrimSpace(subSport))

	switch {
	case sport == "":
		return entity.SessionTypeOther
	case sport == "running":
		if subSport == "trail" {
			return entity.SessionTypeTrail
		}
		return entity.SessionTypeRun
	case sport == "cycling":
		return entity.SessionTypeBike
	case sport == "hiking" || subSport == "hiking":
		return entity.SessionTypeHike
	case sport == "swimming":
		return entity.SessionTypeSwim
	case sport == "inline_skating" || sport == "ice_skating":
		return entity.SessionTypeSkate
	case sport == "generic":
		switch subSport {
		case "trail":
			return entity.SessionTypeTrail
		case "road":
			return entity.SessionTypeRun
		case "yoga", "flexibility_training":
			return entity.SessionTypeMobility
		case "strength_training":
			return entity.SessionTypeStrength
		}
		return entity.SessionTypeOther
	case sport == "flexibility_training" || sport == "yoga" || subSport == "yoga" || subSport == "flexibility_training":
		return entity.SessionTypeMobility
	case sport == "training" || sport == "fitness_equipment" || sport == "strength_training":
		return entity.SessionTypeStrength
	}
	return entity.SessionTypeOther
}
