// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gifcodec implements the anim Decoder and Encoder for GIF.
//
// Both sides stream through github.com/NathanBaulch/gifx. The decoder
// reads the file block by block and exposes every image block as a raw
// patch, leaving disposal to anim.Compose. The encoder writes each
// full-canvas frame as it is added, choosing an exact palette when a frame
// has at most 256 colours and falling back to a dithered Plan 9 palette
// otherwise.
//
//	a := anim.New(gifcodec.NewDecoder())
//	_ = a.Load(ctx, anim.FileSource("in.gif"))
//	data, err := a.Export(ctx, gifcodec.NewEncoder(), nil)
package gifcodec
