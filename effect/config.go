// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package effect

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

// ParseOptions decodes YAML effect options and validates them. Unknown
// keys are rejected so typos do not silently disable an effect.
//
//	pixelSort:
//	  intensity: 0.2
//	  threshold: 0.5
//	  vertical: true
//	dataBend:
//	  amount: 0.1
//	  mode: 1
//	channelShift:
//	  amount: 0.3
//	  channels: [0]
//	  direction: 1
//	noise: 0.1
//	invert: [0, 1, 2]
//	quantize: 4
//	byteCorrupt:
//	  amount: 0.2
//	  blockSize: 4
//	  structured: true
//	chunkSwap:
//	  amount: 0.5
//	  preserveAlpha: true
//	binaryXor:
//	  pattern: [0xaa, 0x55]
//	  strength: 0.4
//	  mode: 3
//	blend:
//	  image: overlay.png
//	  mode: 4
//	  amount: 0.5
//	hue: 90
//	envelope: inOutQuad
//	seed: 7
func ParseOptions(data []byte) (Options, error) {
	var o Options
	if err := yaml.UnmarshalStrict(data, &o); err != nil {
		return Options{}, fmt.Errorf("effect: parse options: %w", err)
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}
