package model

import (
	"encoding/json"
	"testing"
)

func TestPage_HasNext(t *testing.T) {
	var p Page[string]
	if err := json.Unmarshal([]byte(`{"current_page":1,"next_page":null,"data":["a"]}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.HasNext() {
		t.Error("null next_page is terminal")
	}
	if err := json.Unmarshal([]byte(`{"current_page":1,"next_page":2,"data":[]}`), &p); err != nil {
		t.Fatal(err)
	}
	if !p.HasNext() || *p.NextPage != 2 {
		t.Errorf("NextPage = %v", p.NextPage)
	}
}

func TestPageParams_SetPage(t *testing.T) {
	in := struct {
		Database string
		PageParams
	}{Database: "app"}

	var pageable Pageable = &in.PageParams
	pageable.SetPage(4)
	if in.Page != 4 {
		t.Errorf("Page = %d, want 4", in.Page)
	}
}
