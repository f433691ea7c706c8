package constants

// Activity is a closed classification code. One code selects one unit rate.
type Activity string

const (
	ActivityNormal     Activity = "normal"
	ActivityTrainee    Activity = "trainee"
	ActivityInspection Activity = "inspection"
	ActivityNCT        Activity = "nct"
	ActivityLaser      Activity = "laser"
)

// AllActivities fixes the display and aggregation order.
var AllActivities = []Activity{
	ActivityNormal,
	ActivityTrainee,
	ActivityInspection,
	ActivityNCT,
	ActivityLaser,
}

var ActivityNames = map[Activity]string{
	ActivityNormal:     "通常作業",
	ActivityTrainee:    "実習生",
	ActivityInspection: "検査",
	ActivityNCT:        "NCT",
	ActivityLaser:      "レーザー",
}

// MachineActivities lists the machines billed at their own rate. Exact name match.
var MachineActivities = map[string]Activity{
	"NCT":   ActivityNCT,
	"レーザー": ActivityLaser,
}

// InspectionKeyword in the work description marks the span as inspection work.
const InspectionKeyword = "検査"

func IsActivity(a Activity) bool {
	for _, known := range AllActivities {
		if a == known {
			return true
		}
	}
	return false
}
