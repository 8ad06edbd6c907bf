package script

import (
	"errors"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/treestorm/internal/bst"
	"github.com/dshills/treestorm/internal/engine"
)

// treeModule exposes engine operations to Lua as the global "tree" table.
type treeModule struct {
	eng *engine.Engine

	// regroup commits the in-flight script group before fn runs, so undo
	// and redo operate on the script's own work as a finished step.
	regroup func(fn func() error) error
}

func registerTreeModule(L *lua.LState, eng *engine.Engine, regroup func(func() error) error) {
	m := &treeModule{eng: eng, regroup: regroup}

	mod := L.NewTable()
	L.SetField(mod, "insert", L.NewFunction(m.insert))
	L.SetField(mod, "delete", L.NewFunction(m.delete))
	L.SetField(mod, "edit", L.NewFunction(m.edit))
	L.SetField(mod, "clear", L.NewFunction(m.clear))
	L.SetField(mod, "traverse", L.NewFunction(m.traverse))
	L.SetField(mod, "range", L.NewFunction(m.rangeQuery))
	L.SetField(mod, "find", L.NewFunction(m.find))
	L.SetField(mod, "size", L.NewFunction(m.size))
	L.SetField(mod, "notation", L.NewFunction(m.notation))
	L.SetField(mod, "parse", L.NewFunction(m.parse))
	L.SetField(mod, "repair", L.NewFunction(m.repair))
	L.SetField(mod, "undo", L.NewFunction(m.undo))
	L.SetField(mod, "redo", L.NewFunction(m.redo))
	L.SetField(mod, "snapshot", L.NewFunction(m.snapshot))
	L.SetField(mod, "restore", L.NewFunction(m.restore))
	L.SetField(mod, "stats", L.NewFunction(m.stats))
	L.SetGlobal("tree", mod)
}

// insert(v) -> bool
func (m *treeModule) insert(L *lua.LState) int {
	v := L.CheckInt64(1)
	L.Push(lua.LBool(m.eng.Insert(bst.Value(v))))
	return 1
}

// delete(v) -> bool
func (m *treeModule) delete(L *lua.LState) int {
	v := L.CheckInt64(1)
	L.Push(lua.LBool(m.eng.Delete(bst.Value(v))))
	return 1
}

// edit(id, v) -> bool
func (m *treeModule) edit(L *lua.LState) int {
	id := L.CheckInt64(1)
	if id <= 0 {
		L.ArgError(1, "node id must be positive")
		return 0
	}
	v := L.CheckInt64(2)
	L.Push(lua.LBool(m.eng.EditValue(bst.NodeID(id), bst.Value(v))))
	return 1
}

// clear() -> bool
func (m *treeModule) clear(L *lua.LState) int {
	L.Push(lua.LBool(m.eng.Clear()))
	return 1
}

// traverse([order]) -> table
func (m *treeModule) traverse(L *lua.LState) int {
	name := L.OptString(1, "")

	order := bst.InOrder
	if name != "" {
		var err error
		order, err = bst.ParseOrder(name)
		if err != nil {
			L.ArgError(1, err.Error())
			return 0
		}
	}
	L.Push(valuesToTable(L, m.eng.Traverse(order)))
	return 1
}

// range(min, max) -> table
func (m *treeModule) rangeQuery(L *lua.LState) int {
	min := L.CheckInt64(1)
	max := L.CheckInt64(2)
	L.Push(valuesToTable(L, m.eng.RangeQuery(bst.Value(min), bst.Value(max))))
	return 1
}

// find(v) -> id or nil
func (m *treeModule) find(L *lua.LState) int {
	v := L.CheckInt64(1)
	id, ok := m.eng.FindValue(bst.Value(v))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(id))
	return 1
}

// size() -> number
func (m *treeModule) size(L *lua.LState) int {
	L.Push(lua.LNumber(m.eng.Size()))
	return 1
}

// notation() -> string
func (m *treeModule) notation(L *lua.LState) int {
	L.Push(lua.LString(m.eng.Notation()))
	return 1
}

// parse(text) -> ok, err
func (m *treeModule) parse(L *lua.LState) int {
	text := L.CheckString(1)
	if err := m.eng.ParseNotation(text); err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	L.Push(lua.LNil)
	return 2
}

// repair(text) -> string
func (m *treeModule) repair(L *lua.LState) int {
	text := L.CheckString(1)
	L.Push(lua.LString(m.eng.RepairNotation(text)))
	return 1
}

// undo() -> bool
func (m *treeModule) undo(L *lua.LState) int {
	return m.stepHistory(L, m.eng.Undo, engine.ErrNothingToUndo)
}

// redo() -> bool
func (m *treeModule) redo(L *lua.LState) int {
	return m.stepHistory(L, m.eng.Redo, engine.ErrNothingToRedo)
}

func (m *treeModule) stepHistory(L *lua.LState, step func() error, empty error) int {
	var moved bool
	err := m.regroup(func() error {
		switch err := step(); {
		case err == nil:
			moved = true
		case errors.Is(err, empty):
			moved = false
		default:
			return err
		}
		return nil
	})
	if err != nil {
		L.RaiseError("history: %v", err)
		return 0
	}
	L.Push(lua.LBool(moved))
	return 1
}

// snapshot([name]) -> id
func (m *treeModule) snapshot(L *lua.LState) int {
	name := L.OptString(1, "")
	snap := m.eng.Snapshot(name)
	L.Push(lua.LNumber(snap.ID))
	return 1
}

// restore(ref) -> ok, err
func (m *treeModule) restore(L *lua.LState) int {
	var ref string
	switch v := L.CheckAny(1).(type) {
	case lua.LNumber:
		ref = v.String()
	case lua.LString:
		ref = string(v)
	default:
		L.ArgError(1, "snapshot name or id expected")
		return 0
	}

	if err := m.eng.RestoreSnapshot(ref); err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	L.Push(lua.LNil)
	return 2
}

// stats() -> table
func (m *treeModule) stats(L *lua.LState) int {
	s := m.eng.Stats()

	t := L.NewTable()
	L.SetField(t, "size", lua.LNumber(s.Size))
	L.SetField(t, "height", lua.LNumber(s.Height))
	L.SetField(t, "revision", lua.LNumber(s.Revision))
	L.SetField(t, "undo_depth", lua.LNumber(s.UndoDepth))
	L.SetField(t, "redo_depth", lua.LNumber(s.RedoDepth))
	L.SetField(t, "changes", lua.LNumber(s.Changes))
	L.SetField(t, "snapshots", lua.LNumber(s.Snapshots))
	L.Push(t)
	return 1
}

func valuesToTable(L *lua.LState, values []bst.Value) *lua.LTable {
	t := L.NewTable()
	for _, v := range values {
		t.Append(lua.LNumber(v))
	}
	return t
}
