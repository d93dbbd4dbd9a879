// services/availability/buildings.go
package availability

import (
	"sort"
	"strings"

	"classfinder/models"
)

// OtherBuilding is used for room codes with an unknown prefix.
const OtherBuilding = "其他教学楼"

// lowestPriority sorts unknown buildings after every ranked one.
const lowestPriority = 999

var prefixBuildings = map[string]string{
	"SY": "思源楼",
	"SD": "思源东楼",
	"SX": "思源西楼",
	"J9": "第九教学楼",
	"J8": "第八教学楼",
	"JX": "机械楼",
	"YF": "逸夫楼",
	"DQ": "电气楼",
	"TY": "土木楼",
	"DY": "东校区一教",
	"DE": "东校区二教",
}

// priorities ranks the buildings students ask for first. Order matters for
// the substring pass in Priority, so it is a slice rather than a map.
var priorities = []struct {
	name string
	rank int
}{
	{"思源楼", 0},
	{"思源东楼", 1},
	{"思源西楼", 1},
	{"逸夫楼", 2},
}

// BuildingName maps a room code such as "SY101" to its building.
func BuildingName(room string) string {
	if len(room) < 2 {
		return OtherBuilding
	}
	if name, ok := prefixBuildings[strings.ToUpper(room[:2])]; ok {
		return name
	}
	return OtherBuilding
}

// Priority returns the sort rank of a building name; lower comes first.
func Priority(building string) int {
	for _, p := range priorities {
		if p.name == building {
			return p.rank
		}
	}
	for _, p := range priorities {
		if strings.Contains(building, p.name) {
			return p.rank
		}
	}
	return lowestPriority
}

// SortBuildings orders buildings by Priority, keeping page order within a rank.
func SortBuildings(buildings []models.BuildingAvailability) {
	sort.SliceStable(buildings, func(i, j int) bool {
		return Priority(buildings[i].Building) < Priority(buildings[j].Building)
	})
}
