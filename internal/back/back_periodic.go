package back

import (
	"crosspointx/internal/util"
)

func (b *Back) runPeriodicTasks() error {
	return util.ConcatErrors([]error{
		b.pruneStaleCheckIns(),
		b.reconcileLeaderboard(),
	})
}
