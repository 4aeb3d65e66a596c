package catalog

import "testing"

func TestResolveKind(t *testing.T) {
	cases := []struct {
		category string
		want     Kind
	}{
		{"Xét nghiệm", KindLab},
		{"Xét nghiệm huyết học", KindLab},
		{"Chẩn đoán hình ảnh", KindImaging},
		{"Chẩn đoán hình ảnh - X-quang", KindImaging},
		{"Thủ thuật", KindProcedure},
		{"Khám bệnh", KindOther},
		{"", KindOther},
	}
	for _, tc := range cases {
		if got := ResolveKind(tc.category); got != tc.want {
			t.Errorf("ResolveKind(%q) = %s, want %s", tc.category, got, tc.want)
		}
	}
}
