package mql

import "testing"

func TestParseCommandSplitsReceiverFromFirstCall(t *testing.T) {
	cmd, err := ParseCommand(`db.users.find({active:true}).sort({name:1}).limit(10)`)
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}
	if cmd.Receiver != ReceiverCollection || cmd.Collection != "users" {
		t.Fatalf("expected collection receiver 'users', got kind=%v collection=%q", cmd.Receiver, cmd.Collection)
	}
	if cmd.Primary.Method != "find" {
		t.Fatalf("expected primary method 'find', got %q", cmd.Primary.Method)
	}
	if len(cmd.Chain) != 2 || cmd.Chain[0].Method != "sort" || cmd.Chain[1].Method != "limit" {
		t.Fatalf("expected chain [sort, limit], got %v", cmd.Chain)
	}
}

func TestParseCommandDatabaseHelper(t *testing.T) {
	cmd, err := ParseCommand(`db.adminCommand({serverStatus:1})`)
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}
	if cmd.Receiver != ReceiverDatabase {
		t.Fatalf("expected database receiver, got %v", cmd.Receiver)
	}
	if cmd.Primary.Method != "adminCommand" {
		t.Fatalf("expected primary method 'adminCommand', got %q", cmd.Primary.Method)
	}
}

func TestParseCommandGetCollection(t *testing.T) {
	cmd, err := ParseCommand(`db.getCollection('users').find({}).limit(1)`)
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}
	if cmd.Receiver != ReceiverCollection || cmd.Collection != "users" {
		t.Fatalf("expected collection receiver 'users', got kind=%v collection=%q", cmd.Receiver, cmd.Collection)
	}
	if cmd.Primary.Method != "find" {
		t.Fatalf("expected primary method 'find', got %q", cmd.Primary.Method)
	}
	if len(cmd.Chain) != 1 || cmd.Chain[0].Method != "limit" {
		t.Fatalf("expected chain [limit], got %v", cmd.Chain)
	}
}

func TestParseCommandReplicaSet(t *testing.T) {
	cmd, err := ParseCommand(`rs.status()`)
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}
	if cmd.Receiver != ReceiverReplicaSet {
		t.Fatalf("expected replica set receiver, got %v", cmd.Receiver)
	}
	if cmd.Primary.Method != "status" {
		t.Fatalf("expected primary method 'status', got %q", cmd.Primary.Method)
	}
}

func TestParseCommandRejectsDanglingIdentifier(t *testing.T) {
	if _, err := ParseCommand(`db.users.find`); err == nil {
		t.Fatal("expected an error for a command that never closes a call")
	}
}

func TestSplitMethodChainThreeLevelReceiver(t *testing.T) {
	segs, err := splitMethodChain(`db.users.find({a:1}).sort({b:1})`)
	if err != nil {
		t.Fatalf("splitMethodChain failed: %v", err)
	}
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d: %v", len(segs), segs)
	}
	if segs[0].head != "db.users" || segs[0].args != nil {
		t.Fatalf("expected receiver-only segment 'db.users', got %v", segs[0])
	}
	if segs[1].head != "find" || len(segs[1].args) != 1 {
		t.Fatalf("expected find(...) segment, got %v", segs[1])
	}
	if segs[2].head != "sort" {
		t.Fatalf("expected sort(...) segment, got %v", segs[2])
	}
}
