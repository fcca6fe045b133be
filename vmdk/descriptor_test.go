package vmdk

import "testing"

const testDescriptor = "# Disk DescriptorFile\n" +
	"version=1\n" +
	"CID=00000000\n" +
	"parentCID=ffffffff\n" +
	"createType=\"monolithicSparse\"\n" +
	"# Extent description\n" +
	"RW 44042240 SPARSE \"\"\n" +
	"# The Disk Data Base\n" +
	"#DDB\n" +
	"ddb.adapterType = \"ide\"\n" +
	"ddb.geometry.cylinders = \"44042240\"\n" +
	"ddb.geometry.heads = \"1\"\n" +
	"ddb.geometry.sectors = \"1\"\n"

func TestParseDescriptorReadsData(t *testing.T) {
	d, err := Parse([]byte(testDescriptor))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Version != 1 {
		t.Errorf("Version = %d, want 1", d.Version)
	}
	if d.CID != 0 {
		t.Errorf("CID = %#x, want 0", d.CID)
	}
	if d.ParentCID != 0xFFFFFFFF {
		t.Errorf("ParentCID = %#x, want 0xFFFFFFFF", d.ParentCID)
	}
	if d.FileType != MonolithicSparse {
		t.Errorf("FileType = %v, want MonolithicSparse", d.FileType)
	}
	if len(d.Extents) != 1 {
		t.Fatalf("len(Extents) = %d, want 1", len(d.Extents))
	}
	if d.Extents[0].Sectors != 44042240 {
		t.Errorf("Extents[0].Sectors = %d, want 44042240", d.Extents[0].Sectors)
	}
	if d.Extents[0].Filename != "" {
		t.Errorf("Extents[0].Filename = %q, want empty", d.Extents[0].Filename)
	}
}

func TestParseUnrecognizedKeysIgnored(t *testing.T) {
	// ddb.* lines in testDescriptor must not produce an error or get
	// mistaken for extent lines.
	d, err := Parse([]byte(testDescriptor))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(d.Extents) != 1 {
		t.Fatalf("ddb.* metadata lines were misparsed as extents: %d extents", len(d.Extents))
	}
}

func TestParseUnknownCreateType(t *testing.T) {
	source := "createType=\"bogusType\"\n"
	if _, err := Parse([]byte(source)); err == nil {
		t.Fatal("Parse: expected error for unknown createType, got nil")
	}
}
