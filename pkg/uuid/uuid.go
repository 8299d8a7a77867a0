package uuid

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"math/rand"
	"reflect"

	"github.com/pkg/errors"
)

const (
	// RawSize is the size of a UUID in its raw binary form.
	RawSize = 16

	// EncodedSize is the length of the text of the encoded UUID
	EncodedSize = 36
)

// Empty UUID is a UUID that is considered empty.
var Empty = UUID([RawSize]byte{})

// UUID represents an identifier for a single delivery attempt of a
// message. The broker hands one out with every locked delivery and all
// settlement operations address deliveries by it.
type UUID [RawSize]byte

// New generates a UUID from a random source
func New(rnd *rand.Rand) (UUID, error) {
	return generate(rnd)
}

// MustNew creates a UUID or panics on error
func MustNew(rnd *rand.Rand) UUID {
	id, err := New(rnd)
	if err != nil {
		panic(err)
	}
	return id
}

// Parse attempts to parse an id and return a UUID, or returns an error
// on failure.
func Parse(id string) (UUID, error) {
	return ParseBytes([]byte(id))
}

// ParseBytes attempts to parse an id and return a UUID, or returns an
// error on failure.
func ParseBytes(b []byte) (UUID, error) {
	if len(b) != EncodedSize {
		return Empty, errors.New("error invalid length")
	}

	for _, k := range []int{8, 13, 18, 23} {
		if b[k] != '-' {
			return Empty, errors.New("error invalid layout")
		}
	}

	var (
		res UUID
		dst = res[:]
	)
	for _, group := range [][2]int{
		{0, 8},
		{9, 13},
		{14, 18},
		{19, 23},
		{24, 36},
	} {
		n, err := hex.Decode(dst, b[group[0]:group[1]])
		if err != nil {
			return Empty, errors.Wrap(err, "error invalid layout")
		}
		dst = dst[n:]
	}
	return res, nil
}

// MustParse parses the uuid or panics
func MustParse(id string) UUID {
	uid, err := Parse(id)
	if err != nil {
		panic(err)
	}
	return uid
}

// FromRaw builds a UUID from its raw binary form, as it travels inside
// a management request or response.
func FromRaw(b []byte) (UUID, error) {
	if len(b) != RawSize {
		return Empty, errors.New("error invalid length")
	}

	var res UUID
	copy(res[:], b)
	return res, nil
}

// Bytes returns the raw binary form of the UUID
func (u UUID) Bytes() []byte {
	res := make([]byte, RawSize)
	copy(res, u[:])
	return res
}

// Zero returns if the the UUID is zero or not
func (u UUID) Zero() bool {
	return bytes.Equal(u[:], Empty[:])
}

func (u UUID) String() string {
	var enc [EncodedSize]byte
	hex.Encode(enc[:], u[:4])
	enc[8] = '-'
	hex.Encode(enc[9:13], u[4:6])
	enc[13] = '-'
	hex.Encode(enc[14:18], u[6:8])
	enc[18] = '-'
	hex.Encode(enc[19:23], u[8:10])
	enc[23] = '-'
	hex.Encode(enc[24:], u[10:])
	return string(enc[:])
}

// Generate allows UUID to be used within quickcheck scenarios.
func (UUID) Generate(r *rand.Rand, size int) reflect.Value {
	id, err := generate(r)
	if err != nil {
		panic(err)
	}
	return reflect.ValueOf(id)
}

// Equal checks that UUIDs equate to each other.
func (u UUID) Equal(id UUID) bool {
	return bytes.Equal(u[:], id[:])
}

// MarshalJSON converts a UUID into a serialisable json format
func (u UUID) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON unserialises the json format and converts it into a UUID
func (u *UUID) UnmarshalJSON(b []byte) error {
	var res string
	if err := json.Unmarshal(b, &res); err != nil {
		return err
	}

	id, err := Parse(res)
	if err != nil {
		return err
	}

	copy(u[:], id[:])
	return nil
}

func generate(rnd *rand.Rand) (uuid UUID, err error) {
	var pos int
	if pos, err = rnd.Read(uuid[:]); err != nil {
		return
	} else if pos != RawSize {
		err = errors.Errorf("generation failure (length)")
		return
	}

	uuid[6] = (uuid[6] & 0x0f) | 0x40 // Version 4
	uuid[8] = (uuid[8] & 0x3f) | 0x80 // Variant is 10

	return
}
