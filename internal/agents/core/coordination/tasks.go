package coordination

import (
	"fmt"

	"github.com/Conceptual-Machines/storybook-api/internal/models"
)

// FallbackEndScene is drawn when the story omits a closing scene
const FallbackEndScene = "smiling and waving goodbye in a warm, cozy room"

type taskKind int

const (
	taskCover taskKind = iota
	taskPage
	taskEnd
)

// illustrationTask is one entry of the rendering plan
type illustrationTask struct {
	kind      taskKind
	pageIndex int
	scene     string
	startMsg  string
	doneMsg   string
}

// planIllustrations lists cover, every page in document order, then the end scene
func planIllustrations(doc *models.NarrativeDocument) []illustrationTask {
	pageCount := len(doc.Pages)
	tasks := make([]illustrationTask, 0, pageCount+2)

	tasks = append(tasks, illustrationTask{
		kind:     taskCover,
		scene:    doc.CoverScene,
		startMsg: "Rendering Cover Art...",
		doneMsg:  "Cover Art complete.",
	})

	for i, page := range doc.Pages {
		tasks = append(tasks, illustrationTask{
			kind:      taskPage,
			pageIndex: i,
			scene:     page.SceneDescription,
			startMsg:  fmt.Sprintf("Rendering page %d of %d...", i+1, pageCount),
		})
	}

	endScene := doc.EndScene
	if endScene == "" {
		endScene = FallbackEndScene
	}
	tasks = append(tasks, illustrationTask{
		kind:     taskEnd,
		scene:    endScene,
		startMsg: "Rendering The End...",
	})

	return tasks
}

// label names the task in logs and traces
func (t illustrationTask) label() string {
	switch t.kind {
	case taskCover:
		return "cover"
	case taskEnd:
		return "end"
	default:
		return fmt.Sprintf("page %d", t.pageIndex+1)
	}
}
