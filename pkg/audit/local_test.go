package audit

import (
	"io/ioutil"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/quick"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"
	"github.com/trussle/fsys"

	"github.com/trussle/collector/pkg/models"
	"github.com/trussle/collector/pkg/transport"
)

func TestLocal(t *testing.T) {
	t.Parallel()

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	t.Run("append", func(t *testing.T) {
		virtual := fsys.NewVirtualFilesystem()
		config, err := BuildLocalConfig(
			WithRootPath(""),
			WithFsys(virtual),
		)
		if err != nil {
			t.Fatal(err)
		}

		localLog, err := newLocalLog(config, log.NewNopLogger())
		if err != nil {
			t.Fatal(err)
		}

		msg, err := transport.GenerateMessage(rnd, 1)
		if err != nil {
			t.Fatal(err)
		}

		txn := models.NewTransaction()
		txn.Push(msg.LockToken(), msg, models.Completed)

		if err := localLog.Append(txn); err != nil {
			t.Fatal(err)
		}

		if err := virtual.Walk("", func(path string, info os.FileInfo, err error) error {
			if filepath.Base(path) == lockFile {
				return nil
			}

			file, err := virtual.Open(path)
			if err != nil {
				return err
			}

			bytes, err := ioutil.ReadAll(file)
			if err != nil {
				return err
			}

			if expected, actual := msg.LockToken().String(), strings.Split(string(bytes), " ")[0]; expected != actual {
				t.Errorf("expected: %s, actual: %s", expected, actual)
			}

			return nil
		}); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("append flushes the segment", func(t *testing.T) {
		virtual := fsys.NewVirtualFilesystem()
		config, err := BuildLocalConfig(
			WithRootPath(""),
			WithFsys(virtual),
		)
		if err != nil {
			t.Fatal(err)
		}

		localLog, err := newLocalLog(config, log.NewNopLogger())
		if err != nil {
			t.Fatal(err)
		}

		msg, err := transport.GenerateMessage(rnd, 1)
		if err != nil {
			t.Fatal(err)
		}

		txn := models.NewTransaction()
		txn.Push(msg.LockToken(), msg, models.Abandoned)

		if err := localLog.Append(txn); err != nil {
			t.Fatal(err)
		}

		var flushed int
		if err := virtual.Walk("", func(path string, info os.FileInfo, err error) error {
			if filepath.Ext(path) == Flushed.Ext() {
				flushed++
			}
			return nil
		}); err != nil {
			t.Fatal(err)
		}

		if expected, actual := 1, flushed; expected != actual {
			t.Errorf("expected: %d, actual: %d", expected, actual)
		}
	})
}

func TestBuildLocalConfig(t *testing.T) {
	t.Parallel()

	t.Run("build", func(t *testing.T) {
		fn := func(path string) bool {
			config, err := BuildLocalConfig(
				WithRootPath(path),
				WithFsys(fsys.NewNopFilesystem()),
			)
			if err != nil {
				t.Fatal(err)
			}

			if expected, actual := path, config.RootPath; expected != actual {
				t.Errorf("expected: %s, actual: %s", expected, actual)
			}

			return true
		}

		if err := quick.Check(fn, nil); err != nil {
			t.Error(err)
		}
	})

	t.Run("invalid build", func(t *testing.T) {
		_, err := BuildLocalConfig(
			func(config *LocalConfig) error {
				return errors.Errorf("bad")
			},
		)

		if expected, actual := false, err == nil; expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})
}

func TestModifyExtension(t *testing.T) {
	t.Parallel()

	t.Run("modify", func(t *testing.T) {
		if expected, actual := "segment.flushed", modifyExtension("segment.active", Flushed.Ext()); expected != actual {
			t.Errorf("expected: %s, actual: %s", expected, actual)
		}
	})
}
