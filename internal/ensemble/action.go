package ensemble

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/tansive/conductor/internal/catalog"
)

type ActionKind string

const (
	ActionCreateTable ActionKind = "create_table"
	ActionDropTable   ActionKind = "drop_table"
	ActionAlterTable  ActionKind = "alter_table"
)

// Action is a physical change queued by a staged edit. Schema is the table
// definition the backend should hold after the action; it is nil for drops.
type Action struct {
	Kind   ActionKind
	Table  TableRef
	Schema *catalog.Table
}

func (a Action) String() string {
	return string(a.Kind) + " " + a.Table.String()
}

// actionFor derives the physical action for edit. working is the catalog
// with edit already applied. Edits that only touch catalog metadata return
// false.
func actionFor(working *catalog.Catalog, edit catalog.Edit) (Action, bool) {
	var id catalog.TableID
	switch e := edit.(type) {
	case *catalog.CreateTable:
		return Action{Kind: ActionCreateTable, Table: RefOf(e.Table), Schema: e.Table.Clone()}, true
	case *catalog.DropTable:
		return Action{Kind: ActionDropTable, Table: RefOf(e.Table)}, true
	case *catalog.RenameTable:
		id = e.ID
	case *catalog.AddColumn:
		id = e.Table
	case *catalog.DropColumn:
		id = e.Table
	case *catalog.RenameColumn:
		id = e.Table
	case *catalog.AlterColumnType:
		id = e.Table
	default:
		return Action{}, false
	}

	ns, ok := working.Namespaces[edit.NamespaceName()]
	if !ok {
		return Action{}, false
	}
	t, ok := ns.Tables[id]
	if !ok {
		return Action{}, false
	}
	return Action{Kind: ActionAlterTable, Table: RefOf(t), Schema: t.Clone()}, true
}

// enqueue appends a to the queue. Consecutive schema updates of one table
// collapse into the last one.
func enqueue(queue []Action, a Action) []Action {
	if a.Kind == ActionAlterTable && len(queue) > 0 {
		last := &queue[len(queue)-1]
		if last.Table.Namespace == a.Table.Namespace && last.Table.ID == a.Table.ID &&
			(last.Kind == ActionAlterTable || last.Kind == ActionCreateTable) {
			last.Table = a.Table
			last.Schema = a.Schema
			return queue
		}
	}
	return append(queue, a)
}

func (a Action) execute(ctx context.Context, storage TableStorage) error {
	log.Ctx(ctx).Debug().Str("action", string(a.Kind)).Str("table", a.Table.String()).Msg("executing action")
	switch a.Kind {
	case ActionCreateTable:
		return storage.CreateTable(ctx, a.Schema)
	case ActionDropTable:
		return storage.DropTable(ctx, a.Table)
	case ActionAlterTable:
		w, err := storage.OpenTable(ctx, a.Table)
		if err != nil {
			return err
		}
		if err := w.UpdateSchema(ctx, a.Schema); err != nil {
			w.Close()
			return err
		}
		return w.Close()
	}
	return ErrCommit.Msgf("unknown action %q", a.Kind)
}
