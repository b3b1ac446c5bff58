package ghosting

import (
	"math"
	"sort"

	"taskradar/internal/tasks"
)

const topN = 3

type ProjectCount struct {
	Project string `json:"project"`
	Count   int    `json:"count"`
}

type OwnerCount struct {
	Owner string `json:"owner"`
	Count int    `json:"count"`
}

// Insights — агрегат по коллекции для дашборда.
type Insights struct {
	TotalTasks        int            `json:"total_tasks"`
	GhostedCount      int            `json:"ghosted_count"`
	CompletedCount    int            `json:"completed_count"`
	PendingCount      int            `json:"pending_count"`
	GhostedPercentage int            `json:"ghosted_percentage"`
	ProjectsTop       []ProjectCount `json:"projects_with_most_ghosted"`
	OwnersTop         []OwnerCount   `json:"owners_with_most_ghosted"`
}

// Summarize считает агрегаты. Ghosted берётся из приложенного вердикта,
// completed учитывает и status, и final_resolution. Топ-3 по убыванию,
// при равенстве счётчиков — в порядке первого появления.
func Summarize(list []tasks.Task) Insights {
	ins := Insights{TotalTasks: len(list)}

	projectCounts := map[string]int{}
	ownerCounts := map[string]int{}
	var projectOrder, ownerOrder []string

	for i := range list {
		t := &list[i]
		if t.Resolved() {
			ins.CompletedCount++
		} else {
			ins.PendingCount++
		}
		if t.AIAnalysis == nil || !t.AIAnalysis.IsGhosted {
			continue
		}
		ins.GhostedCount++
		if _, seen := projectCounts[t.Project]; !seen {
			projectOrder = append(projectOrder, t.Project)
		}
		projectCounts[t.Project]++
		if _, seen := ownerCounts[t.Owner]; !seen {
			ownerOrder = append(ownerOrder, t.Owner)
		}
		ownerCounts[t.Owner]++
	}

	if ins.TotalTasks > 0 {
		ins.GhostedPercentage = int(math.Round(100 * float64(ins.GhostedCount) / float64(ins.TotalTasks)))
	}

	sort.SliceStable(projectOrder, func(i, j int) bool {
		return projectCounts[projectOrder[i]] > projectCounts[projectOrder[j]]
	})
	for _, p := range projectOrder {
		if len(ins.ProjectsTop) == topN {
			break
		}
		ins.ProjectsTop = append(ins.ProjectsTop, ProjectCount{Project: p, Count: projectCounts[p]})
	}

	sort.SliceStable(ownerOrder, func(i, j int) bool {
		return ownerCounts[ownerOrder[i]] > ownerCounts[ownerOrder[j]]
	})
	for _, o := range ownerOrder {
		if len(ins.OwnersTop) == topN {
			break
		}
		ins.OwnersTop = append(ins.OwnersTop, OwnerCount{Owner: o, Count: ownerCounts[o]})
	}

	return ins
}
