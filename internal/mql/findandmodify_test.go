package mql

import "testing"

func TestFindAndModifyUpdateDesugarsToFindOneAndUpdate(t *testing.T) {
	op := buildSource(t, `db.users.findAndModify({query:{_id:1}, update:{$set:{active:true}}, new:true, sort:{_id:1}})`)
	if op.Kind != KindFindOneAndUpdate {
		t.Fatalf("expected KindFindOneAndUpdate, got %v", op.Kind)
	}
	if op.FindOneAndUpdateOptions == nil || op.FindOneAndUpdateOptions.ReturnDocument == nil {
		t.Fatalf("expected a returnDocument option, got %v", op.FindOneAndUpdateOptions)
	}
	if len(op.Sort) != 1 || op.Sort[0].Key != "_id" {
		t.Fatalf("expected sort to carry through, got %v", op.Sort)
	}
}

func TestFindAndModifyReplacementDocDesugarsToFindOneAndReplace(t *testing.T) {
	op := buildSource(t, `db.users.findAndModify({query:{_id:1}, update:{_id:1, active:false}})`)
	if op.Kind != KindFindOneAndReplace {
		t.Fatalf("expected KindFindOneAndReplace, got %v", op.Kind)
	}
}

func TestFindAndModifyRemoveDesugarsToFindOneAndDelete(t *testing.T) {
	op := buildSource(t, `db.users.findAndModify({query:{_id:1}, remove:true, writeConcern:{w:"majority"}, let:{a:1}})`)
	if op.Kind != KindFindOneAndDelete {
		t.Fatalf("expected KindFindOneAndDelete, got %v", op.Kind)
	}
	if op.FindOneAndDeleteOpts == nil || op.FindOneAndDeleteOpts.WriteConcern == nil {
		t.Fatalf("expected writeConcern to carry through, got %v", op.FindOneAndDeleteOpts)
	}
	if op.FindOneAndDeleteOpts.Let == nil {
		t.Fatalf("expected let to carry through, got %v", op.FindOneAndDeleteOpts)
	}
}

func TestFindAndModifyNewAndReturnOriginalConflict(t *testing.T) {
	cmd, err := ParseCommand(`db.users.findAndModify({query:{_id:1}, update:{$set:{a:1}}, new:true, returnOriginal:true})`)
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}
	if _, err := Build(cmd); err == nil {
		t.Fatal("expected an error when 'new' and 'returnOriginal' conflict")
	}
}

func TestFindAndModifyFieldsAndProjectionConflict(t *testing.T) {
	cmd, err := ParseCommand(`db.users.findAndModify({query:{_id:1}, update:{$set:{a:1}}, fields:{a:1}, projection:{a:1}})`)
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}
	if _, err := Build(cmd); err == nil {
		t.Fatal("expected an error when 'fields' and 'projection' are both set")
	}
}

func TestFindAndModifyRemoveRejectsUpdate(t *testing.T) {
	cmd, err := ParseCommand(`db.users.findAndModify({query:{_id:1}, remove:true, update:{$set:{a:1}}})`)
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}
	if _, err := Build(cmd); err == nil {
		t.Fatal("expected an error when 'update' is set together with remove=true")
	}
}

func TestFindAndModifyRemoveRejectsUpsert(t *testing.T) {
	cmd, err := ParseCommand(`db.users.findAndModify({query:{_id:1}, remove:true, upsert:true})`)
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}
	if _, err := Build(cmd); err == nil {
		t.Fatal("expected an error when 'upsert' is set together with remove=true")
	}
}

func TestFindAndModifyRemoveRejectsReturnOptions(t *testing.T) {
	cmd, err := ParseCommand(`db.users.findAndModify({query:{_id:1}, remove:true, new:true})`)
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}
	if _, err := Build(cmd); err == nil {
		t.Fatal("expected an error when a return-document option is set together with remove=true")
	}
}

func TestFindAndModifyRequiresUpdateWhenNotRemoving(t *testing.T) {
	cmd, err := ParseCommand(`db.users.findAndModify({query:{_id:1}})`)
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}
	if _, err := Build(cmd); err == nil {
		t.Fatal("expected an error when neither 'update' nor remove=true is given")
	}
}

func TestFindAndModifyRejectsUnknownField(t *testing.T) {
	cmd, err := ParseCommand(`db.users.findAndModify({query:{_id:1}, update:{$set:{a:1}}, bogus:1})`)
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}
	if _, err := Build(cmd); err == nil {
		t.Fatal("expected an error for an unsupported findAndModify field")
	}
}
