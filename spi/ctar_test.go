package spi

import "testing"

func TestEncodeSelectsCoarsestDivisorWithinLimit(t *testing.T) {
	table := Table{
		{2, BR(0) | DBR(1)},
		{4, BR(0)},
		{8, BR(1) | CSSCK(1)},
		{16, BR(3) | CSSCK(2)},
	}
	// 16 MHz / 2 = 8 MHz exceeds 5 MHz; 16 MHz / 4 = 4 MHz does not.
	got := Encode(5_000_000, MSBFirst, Mode0, table, 16_000_000)
	if want := FMSZ(7); got != want {
		t.Fatalf("ctar = %#08x, want %#08x (frame size only)", got, want)
	}
	d, _ := table.Select(5_000_000, 16_000_000)
	if d.Div != 4 {
		t.Fatalf("selected divisor %d, want 4", d.Div)
	}
}

func TestFieldHelpers(t *testing.T) {
	cases := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"dbr on", DBR(1), 0x80000000},
		{"dbr off", DBR(0), 0},
		{"dbr masked", DBR(2), 0},
		{"fmsz", FMSZ(7), 0x38000000},
		{"pbr", PBR(3), 0x00030000},
		{"br", BR(15), 0x0000000F},
		{"cssck", CSSCK(7), 0x00007000},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Fatalf("%s = %#08x, want %#08x", c.name, c.got, c.want)
		}
	}
	if KinetisTable[0].Bits&DBR(1) == 0 || KinetisTable[2].Bits&DBR(1) != 0 {
		t.Fatal("DBR should be set only on the odd fast divisors")
	}
}

func TestEncodeKinetisTable(t *testing.T) {
	const bus = 36_000_000
	cases := []struct {
		name  string
		hz    uint32
		order BitOrder
		mode  Mode
		want  uint32
	}{
		// 1 MHz selects ÷40: PBR(2)|BR(3)|CSSCK(3).
		{"mode0", 1_000_000, MSBFirst, Mode0, 0x38023003},
		{"mode1", 1_000_000, MSBFirst, Mode1, 0x3A020303},
		{"mode2", 1_000_000, MSBFirst, Mode2, 0x3C023003},
		{"mode3", 1_000_000, MSBFirst, Mode3, 0x3E020303},
		{"lsb", 1_000_000, LSBFirst, Mode0, 0x39023003},
		// Equal rate is accepted: 36 MHz / 4 = 9 MHz.
		{"exact", 9_000_000, MSBFirst, Mode0, 0x38000000},
		// Faster than anything: first (÷2, DBR) entry.
		{"fastest", 100_000_000, MSBFirst, Mode0, 0xB8000000},
		// Slower than anything: last (÷768) entry is kept.
		{"slowest", 1, MSBFirst, Mode0, 0x38017008},
	}
	for _, c := range cases {
		got := Encode(c.hz, c.order, c.mode, KinetisTable, bus)
		if got != c.want {
			t.Fatalf("%s: ctar = %#08x, want %#08x", c.name, got, c.want)
		}
	}
}

func TestModeBitEffects(t *testing.T) {
	enc := func(m Mode) uint32 { return Encode(1_000_000, MSBFirst, m, KinetisTable, 36_000_000) }
	m0, m1, m2, m3 := enc(Mode0), enc(Mode1), enc(Mode2), enc(Mode3)

	if m2^m0 != ctarCPOL {
		t.Fatalf("mode2 differs from mode0 by %#08x, want CPOL only", m2^m0)
	}
	if m1 != (shiftDelay(m0) | ctarCPHA) {
		t.Fatalf("mode1 = %#08x, want phase flag plus shifted delay", m1)
	}
	if m3 != (shiftDelay(m2) | ctarCPHA) {
		t.Fatalf("mode3 = %#08x, want mode2 plus phase flag and shift", m3)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	for _, hz := range []uint32{0, 1, 250_000, 4_000_000, 24_000_000, 0xFFFFFFFF} {
		for _, o := range []BitOrder{MSBFirst, LSBFirst} {
			for _, m := range []Mode{Mode0, Mode1, Mode2, Mode3} {
				a := NewSettings(hz, o, m)
				b := NewSettings(hz, o, m)
				if a.CTAR() != b.CTAR() || a.Divisor() != b.Divisor() {
					t.Fatalf("settings differ for %d/%v/%d", hz, o, m)
				}
			}
		}
	}
}

func TestEmptyTableIsTotal(t *testing.T) {
	if got := Encode(1_000_000, LSBFirst, Mode3, nil, 36_000_000); got != FMSZ(7)|ctarLSBFE|ctarCPOL|ctarCPHA {
		t.Fatalf("ctar = %#08x", got)
	}
}

func TestSettingsAccessors(t *testing.T) {
	s := NewSettingsFor(Clock{BusHz: 36_000_000, Table: KinetisTable}, 1_000_000, LSBFirst, Mode2)
	if s.MaxHz() != 1_000_000 || s.Order() != LSBFirst || s.Mode() != Mode2 {
		t.Fatalf("accessors wrong: %+v", s)
	}
	if s.Divisor().Div != 40 || s.ActualHz() != 900_000 {
		t.Fatalf("divisor %d actual %d", s.Divisor().Div, s.ActualHz())
	}
	r := s.With(9_000_000, MSBFirst, Mode0)
	if r.CTAR() != 0x38000000 {
		t.Fatalf("re-encoded ctar = %#08x", r.CTAR())
	}
}
