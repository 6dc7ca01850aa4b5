// Package verification verifies that a built image matches a reference image.
package verification

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"
)

const maxReportedMismatches = 10

// VerifyOutput compares the built image with the reference image and logs
// the first mismatching offsets.
func VerifyOutput(logger *log.Logger, reference, image []byte) error {
	if err := checkBufferEqual(logger, reference, image); err != nil {
		return fmt.Errorf("image mismatch: %w", err)
	}
	return nil
}

func checkBufferEqual(logger *log.Logger, input, output []byte) error {
	if len(input) != len(output) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(input), len(output))
	}

	var diffs uint64
	for i := range input {
		if input[i] == output[i] {
			continue
		}

		diffs++
		if diffs < maxReportedMismatches {
			logger.Warn("Offset mismatch",
				log.Hex("offset", i),
				log.Hex("expected", input[i]),
				log.Hex("got", output[i]))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d offset mismatches", diffs)
}
