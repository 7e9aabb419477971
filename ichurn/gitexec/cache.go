package gitexec

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/tinylib/msgp/msgp"
	bolt "go.etcd.io/bbolt"
)

var cacheBucket = []byte("git-output")

// Cache stores git command output in a bbolt file. Only use it for commands whose output
// can't change, i.e. ones addressing history by full commit sha.
type Cache struct {
	db *bolt.DB
}

func OpenCache(loc string) (*Cache, error) {
	db, err := bolt.Open(loc, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("could not open git cache at %v: %w", loc, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

func (s *Cache) Close() error {
	return s.db.Close()
}

// Exec returns cached output for the command or runs it and stores the result.
// Failed commands are not cached.
func (s *Cache) Exec(ctx context.Context, gitCommand string, repoDir string, args []string) ([]byte, error) {
	dir, err := filepath.Abs(repoDir)
	if err != nil {
		return nil, err
	}
	key := cacheKey(dir, args)

	if out, ok, err := s.get(key, dir, args); err != nil {
		return nil, err
	} else if ok {
		return out, nil
	}

	out, err := Exec(ctx, gitCommand, repoDir, args)
	if err != nil {
		return nil, err
	}
	e := entry{Dir: dir, Args: args, Created: time.Now().Unix(), Output: out}
	err = s.put(key, e)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Cache) get(key []byte, dir string, args []string) (res []byte, ok bool, _ error) {
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(cacheBucket).Get(key)
		if data == nil {
			return nil
		}
		var e entry
		if _, err := e.UnmarshalMsg(data); err != nil {
			return fmt.Errorf("corrupt git cache entry: %w", err)
		}
		// xxhash collision, treat as a miss
		if e.Dir != dir || !slices.Equal(e.Args, args) {
			return nil
		}
		res = bytes.Clone(e.Output)
		ok = true
		return nil
	})
	return res, ok, err
}

func (s *Cache) put(key []byte, e entry) error {
	data, err := e.MarshalMsg(nil)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).Put(key, data)
	})
}

func cacheKey(dir string, args []string) []byte {
	h := xxhash.Sum64String(dir + "\x00" + strings.Join(args, "\x00"))
	res := make([]byte, 8)
	binary.BigEndian.PutUint64(res, h)
	return res
}

type entry struct {
	Dir     string
	Args    []string
	Created int64
	Output  []byte
}

func (e entry) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 4)
	b = msgp.AppendString(b, "dir")
	b = msgp.AppendString(b, e.Dir)
	b = msgp.AppendString(b, "args")
	b = msgp.AppendArrayHeader(b, uint32(len(e.Args)))
	for _, a := range e.Args {
		b = msgp.AppendString(b, a)
	}
	b = msgp.AppendString(b, "created")
	b = msgp.AppendInt64(b, e.Created)
	b = msgp.AppendString(b, "output")
	b = msgp.AppendBytes(b, e.Output)
	return b, nil
}

func (e *entry) UnmarshalMsg(b []byte) ([]byte, error) {
	n, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return b, err
	}
	for i := uint32(0); i < n; i++ {
		var field string
		field, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return b, err
		}
		switch field {
		case "dir":
			e.Dir, b, err = msgp.ReadStringBytes(b)
		case "args":
			var l uint32
			l, b, err = msgp.ReadArrayHeaderBytes(b)
			if err != nil {
				return b, err
			}
			e.Args = make([]string, l)
			for j := range e.Args {
				e.Args[j], b, err = msgp.ReadStringBytes(b)
				if err != nil {
					return b, err
				}
			}
		case "created":
			e.Created, b, err = msgp.ReadInt64Bytes(b)
		case "output":
			e.Output, b, err = msgp.ReadBytesBytes(b, nil)
		default:
			b, err = msgp.Skip(b)
		}
		if err != nil {
			return b, err
		}
	}
	return b, nil
}
