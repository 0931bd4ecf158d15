package ui

import (
	"fmt"
	"io"

	"github.com/Alb-O/frz/internal/data"
	"github.com/Alb-O/frz/internal/index"
	"github.com/Alb-O/frz/internal/stream"
)

// RunPlain drains the index stream without a terminal UI and writes the
// final file listing to w, one path per line. Used when stdout is not a
// TTY so frz composes with pipes.
func RunPlain(d *data.SearchData, receiver *stream.Receiver[index.View], w io.Writer) error {
	view := &plainView{data: d}
	for {
		env, ok := receiver.Recv()
		if !ok {
			break
		}
		env.Dispatch(view)
		if view.complete {
			break
		}
	}

	for _, row := range d.Files {
		if _, err := fmt.Fprintln(w, row.Path); err != nil {
			return fmt.Errorf("write listing: %w", err)
		}
	}
	return nil
}

// plainView applies index envelopes straight to the dataset; there is
// no worker to forward to.
type plainView struct {
	data     *data.SearchData
	complete bool
}

func (v *plainView) ForwardUpdate(data.IndexUpdate) {}

func (v *plainView) ApplyUpdate(update data.IndexUpdate) bool {
	return v.data.ApplyUpdate(update)
}

func (v *plainView) RecordProgress(progress data.Progress) {
	v.data.Progress = progress
	if progress.Complete {
		v.complete = true
	}
}

func (v *plainView) ScheduleRefresh(bool) {}
