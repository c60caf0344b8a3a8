package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("grid_row", "grid_col", "owner").
		From("claims").
		Where(Eq("game_id", "ABC123")).
		OrderBy("grid_row", "grid_col").
		Limit(100).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT grid_row, grid_col, owner FROM claims WHERE game_id = $1 ORDER BY grid_row, grid_col LIMIT 100"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "ABC123" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilderWithSuffix(t *testing.T) {
	query, args, err := InsertInto("claims").
		Columns("game_id", "grid_row", "grid_col", "owner").
		Values("ABC123", 4, 5, "alice").
		Suffix("ON CONFLICT (game_id, grid_row, grid_col) DO NOTHING").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO claims (game_id, grid_row, grid_col, owner) VALUES ($1, $2, $3, $4) ON CONFLICT (game_id, grid_row, grid_col) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("participants").
		SetExpr("bonus_claims", "bonus_claims + ?", 3).
		Where(Eq("game_id", "ABC123"), Eq("player_name", "alice")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE participants SET bonus_claims = bonus_claims + $1 WHERE game_id = $2 AND player_name = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != 3 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("claims").
		Where(Eq("game_id", "ABC123"), Eq("owner", "VOID")).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM claims WHERE game_id = $1 AND owner = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := DeleteFrom("claims").ToSQL(); err == nil {
		t.Fatalf("unconditioned delete must fail")
	}
}
