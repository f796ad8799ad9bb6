package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/aurorus/pkg/command"
	"github.com/matzehuels/aurorus/pkg/integrations/aur"
	"github.com/matzehuels/aurorus/pkg/integrations/pacman"
)

func TestAURAdapter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/rpc"):
			q := r.URL.Query()
			var results []aur.Package
			if q.Get("type") == "info" && q.Get("arg[]") == "foo" {
				results = []aur.Package{{Name: "foo", PackageBase: "foo-base", Version: "1.0-1", NumVotes: 3}}
			}
			json.NewEncoder(w).Encode(map[string]any{"version": 5, "type": "multiinfo", "results": results})
		case r.URL.Path == "/cgit/aur.git/plain/.SRCINFO":
			w.Write([]byte("pkgbase = foo-base\n\tpkgver = 1.0\n\tpkgrel = 1\n\tmakedepends = cmake\n\tcheckdepends = gtest\n\tdepends = bar>=2\n\npkgname = foo\n"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := aur.NewClient(nil, time.Hour, server.URL, "x86_64")
	client.SetHTTPClient(server.Client())
	a := NewAUR(client, false)

	recs, err := a.Lookup(context.Background(), "foo")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("records = %d", len(recs))
	}
	r := recs[0]
	if r.Origin != OriginAUR || r.Base != "foo-base" || r.Votes != 3 {
		t.Errorf("record = %+v", r)
	}
	if len(r.Depends) != 1 || r.Depends[0].String() != "bar>=2" {
		t.Errorf("Depends = %v", r.Depends)
	}
	if len(r.MakeDepends) != 2 || r.MakeDepends[0].Name != "cmake" || r.MakeDepends[1].Name != "gtest" {
		t.Errorf("MakeDepends = %v (checkdepends are build-only)", r.MakeDepends)
	}

	recs, err = a.Lookup(context.Background(), "missing")
	if err != nil || len(recs) != 0 {
		t.Errorf("missing Lookup = %v, %v", recs, err)
	}
}

type scriptedRunner map[string]string

func (s scriptedRunner) Run(ctx context.Context, cmd command.Cmd) ([]byte, error) {
	key := strings.Join(cmd.Args, " ")
	if out, ok := s[key]; ok {
		return []byte(out), nil
	}
	out := "error: package '" + cmd.Args[len(cmd.Args)-1] + "' was not found"
	return []byte(out), &command.Error{Cmd: cmd, Err: errors.New("exit status 1"), Output: out, Exit: 1}
}

func TestRepoAdapter(t *testing.T) {
	runner := scriptedRunner{
		"-Si -- git": "Repository : extra\nName : git\nVersion : 2.45.0-1\nDepends On : curl  perl>=5.14\nProvides : git-core\n",
	}
	r := NewRepo(pacman.NewClient(runner, ""))

	recs, err := r.Lookup(context.Background(), "git")
	if err != nil || len(recs) != 1 {
		t.Fatalf("Lookup = %v, %v", recs, err)
	}
	got := recs[0]
	if got.Origin != OriginRepo || got.Repository != "extra" || len(got.Depends) != 2 || len(got.MakeDepends) != 0 {
		t.Errorf("record = %+v", got)
	}

	recs, err = r.Lookup(context.Background(), "nope")
	if err != nil || len(recs) != 0 {
		t.Errorf("missing Lookup = %v, %v", recs, err)
	}
}
