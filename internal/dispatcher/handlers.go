package dispatcher

import (
	"errors"
	"fmt"

	"github.com/dshills/treestorm/internal/bst"
	"github.com/dshills/treestorm/internal/engine"
)

// registerBuiltins installs the standard action set.
func registerBuiltins(r *Registry) {
	builtins := []*SimpleHandler{
		{ActionName: "tree.insert", Fn: handleInsert},
		{ActionName: "tree.delete", Fn: handleDelete},
		{ActionName: "tree.edit", Fn: handleEdit},
		{ActionName: "tree.clear", Fn: handleClear},
		{ActionName: "tree.traverse", Fn: handleTraverse},
		{ActionName: "tree.range", Fn: handleRange},
		{ActionName: "tree.find", Fn: handleFind},
		{ActionName: "tree.stats", Fn: handleStats},
		{ActionName: "notation.parse", Fn: handleParse},
		{ActionName: "notation.repair", Fn: handleRepair},
		{ActionName: "notation.show", Fn: handleShow},
		{ActionName: "notation.export", Fn: handleExport},
		{ActionName: "history.undo", Fn: handleUndo},
		{ActionName: "history.redo", Fn: handleRedo},
		{ActionName: "history.snapshot", Fn: handleSnapshot},
		{ActionName: "history.restore", Fn: handleRestore},
		{ActionName: "history.snapshots", Fn: handleSnapshots},
		{ActionName: "history.changes", Fn: handleChanges},
	}
	for _, h := range builtins {
		r.Register(h.ActionName, h)
	}
}

func handleInsert(action Action, eng *engine.Engine) Result {
	v := action.Args.Value
	if !eng.Insert(v) {
		return NoOpWithMessage(fmt.Sprintf("%d already present", v))
	}
	return SuccessWithMessage(fmt.Sprintf("inserted %d", v))
}

func handleDelete(action Action, eng *engine.Engine) Result {
	v := action.Args.Value
	if !eng.Delete(v) {
		return NoOpWithMessage(fmt.Sprintf("%d not present", v))
	}
	return SuccessWithMessage(fmt.Sprintf("deleted %d", v))
}

func handleEdit(action Action, eng *engine.Engine) Result {
	id, v := action.Args.NodeID, action.Args.Value
	if id == 0 {
		return Errorf("edit requires a node id")
	}
	if !eng.EditValue(id, v) {
		return NoOpWithMessage(fmt.Sprintf("node %d unknown or already %d", id, v))
	}
	return SuccessWithMessage(fmt.Sprintf("node %d set to %d", id, v))
}

func handleClear(_ Action, eng *engine.Engine) Result {
	if !eng.Clear() {
		return NoOpWithMessage("tree already empty")
	}
	return SuccessWithMessage("cleared")
}

func handleTraverse(action Action, eng *engine.Engine) Result {
	order := bst.InOrder
	if action.Args.Order != "" {
		var err error
		order, err = bst.ParseOrder(action.Args.Order)
		if err != nil {
			return Error(err)
		}
	}
	return Success().WithValues(eng.Traverse(order))
}

func handleRange(action Action, eng *engine.Engine) Result {
	return Success().WithValues(eng.RangeQuery(action.Args.Min, action.Args.Max))
}

func handleFind(action Action, eng *engine.Engine) Result {
	v := action.Args.Value
	id, ok := eng.FindValue(v)
	if !ok {
		return NoOpWithMessage(fmt.Sprintf("%d not present", v))
	}
	return SuccessWithMessage(fmt.Sprintf("%d held by node %d", v, id)).
		WithData("id", uint64(id))
}

func handleStats(_ Action, eng *engine.Engine) Result {
	s := eng.Stats()
	return Success().
		WithData("size", s.Size).
		WithData("height", s.Height).
		WithData("revision", s.Revision).
		WithData("undo_depth", s.UndoDepth).
		WithData("redo_depth", s.RedoDepth).
		WithData("changes", s.Changes).
		WithData("snapshots", s.Snapshots)
}

func handleParse(action Action, eng *engine.Engine) Result {
	if err := eng.ParseNotation(action.Args.Text); err != nil {
		return Error(err)
	}
	return SuccessWithMessage(fmt.Sprintf("parsed %d nodes", eng.Size()))
}

func handleRepair(action Action, eng *engine.Engine) Result {
	return Success().WithText(eng.RepairNotation(action.Args.Text))
}

func handleShow(_ Action, eng *engine.Engine) Result {
	return Success().WithText(eng.Notation())
}

func handleExport(_ Action, eng *engine.Engine) Result {
	data, err := eng.TreeJSON()
	if err != nil {
		return Error(err)
	}
	return Success().WithText(string(data))
}

func handleUndo(_ Action, eng *engine.Engine) Result {
	switch err := eng.Undo(); {
	case errors.Is(err, engine.ErrNothingToUndo):
		return NoOpWithMessage("nothing to undo")
	case err != nil:
		return Error(err)
	}
	return SuccessWithMessage("undone")
}

func handleRedo(_ Action, eng *engine.Engine) Result {
	switch err := eng.Redo(); {
	case errors.Is(err, engine.ErrNothingToRedo):
		return NoOpWithMessage("nothing to redo")
	case err != nil:
		return Error(err)
	}
	return SuccessWithMessage("redone")
}

func handleSnapshot(action Action, eng *engine.Engine) Result {
	snap := eng.Snapshot(action.Args.Name)
	msg := fmt.Sprintf("snapshot %d created", snap.ID)
	if snap.Name != "" {
		msg = fmt.Sprintf("snapshot %d (%s) created", snap.ID, snap.Name)
	}
	return SuccessWithMessage(msg).
		WithData("id", uint64(snap.ID)).
		WithData("name", snap.Name)
}

func handleRestore(action Action, eng *engine.Engine) Result {
	ref := action.Args.Name
	if ref == "" {
		return Errorf("restore requires a snapshot name or id")
	}
	if err := eng.RestoreSnapshot(ref); err != nil {
		return Error(err)
	}
	return SuccessWithMessage(fmt.Sprintf("restored snapshot %s", ref))
}

func handleSnapshots(_ Action, eng *engine.Engine) Result {
	return Success().WithData("snapshots", eng.Snapshots())
}

func handleChanges(action Action, eng *engine.Engine) Result {
	return Success().WithData("changes", eng.Changes(action.Args.Count))
}
