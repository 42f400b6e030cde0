// Copyright 2026 Inkwell Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"time"

	"github.com/inkwell-ai/inkwell/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the records stored as badger values. Written by hand
// against the mus-go primitive serializers; the records are flat enough
// that code generation would be overkill.
var (
	vectorSer   = ord.NewSliceSer[float32](raw.Float32)
	metadataSer = ord.NewMapSer[string, string](ord.String, ord.String)

	// ChunkMUS serializes core.Chunk values.
	ChunkMUS = chunkMUS{}
	// CollectionMUS serializes core.Collection values.
	CollectionMUS = collectionMUS{}
)

type chunkMUS struct{}

func (chunkMUS) Marshal(c core.Chunk, bs []byte) (n int) {
	n = ord.String.Marshal(c.Collection, bs)
	n += varint.Int.Marshal(c.Seq, bs[n:])
	n += ord.String.Marshal(c.Text, bs[n:])
	n += vectorSer.Marshal(c.Vector, bs[n:])
	n += metadataSer.Marshal(c.Metadata, bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (c core.Chunk, n int, err error) {
	var n1 int
	if c.Collection, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if c.Seq, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Vector, n1, err = vectorSer.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Metadata, n1, err = metadataSer.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (chunkMUS) Size(c core.Chunk) (size int) {
	size = ord.String.Size(c.Collection)
	size += varint.Int.Size(c.Seq)
	size += ord.String.Size(c.Text)
	size += vectorSer.Size(c.Vector)
	size += metadataSer.Size(c.Metadata)
	return size
}

type collectionMUS struct{}

func (collectionMUS) Marshal(c core.Collection, bs []byte) (n int) {
	n = ord.String.Marshal(c.Id, bs)
	n += varint.Int.Marshal(int(c.SourceType), bs[n:])
	n += ord.String.Marshal(c.Title, bs[n:])
	n += varint.Int64.Marshal(c.CreatedAt.UnixMicro(), bs[n:])
	n += varint.Int.Marshal(c.ChunkCount, bs[n:])
	n += ord.String.Marshal(c.Summary, bs[n:])
	n += raw.Uint64.Marshal(c.Fingerprint, bs[n:])
	n += metadataSer.Marshal(c.Provenance, bs[n:])
	return n
}

func (collectionMUS) Unmarshal(bs []byte) (c core.Collection, n int, err error) {
	var n1 int
	if c.Id, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	var st int
	if st, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	c.SourceType = core.SourceType(st)
	n += n1
	if c.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	var micros int64
	if micros, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	c.CreatedAt = time.UnixMicro(micros).UTC()
	n += n1
	if c.ChunkCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Summary, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Fingerprint, n1, err = raw.Uint64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Provenance, n1, err = metadataSer.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (collectionMUS) Size(c core.Collection) (size int) {
	size = ord.String.Size(c.Id)
	size += varint.Int.Size(int(c.SourceType))
	size += ord.String.Size(c.Title)
	size += varint.Int64.Size(c.CreatedAt.UnixMicro())
	size += varint.Int.Size(c.ChunkCount)
	size += ord.String.Size(c.Summary)
	size += raw.Uint64.Size(c.Fingerprint)
	size += metadataSer.Size(c.Provenance)
	return size
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, ChunkMUS.Size(*chunk))
	ChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := ChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// MarshalCollection serializes a Collection to bytes.
func MarshalCollection(col *core.Collection) []byte {
	buf := make([]byte, CollectionMUS.Size(*col))
	CollectionMUS.Marshal(*col, buf)
	return buf
}

// UnmarshalCollection deserializes a Collection from bytes.
func UnmarshalCollection(data []byte) (*core.Collection, error) {
	col, _, err := CollectionMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &col, nil
}
