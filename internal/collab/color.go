package collab

import (
	"fmt"
	"math/rand"
)

// randomColor picks a presence color for one session. Uniform over the RGB
// cube, same as the editor frontend did.
func randomColor() string {
	return fmt.Sprintf("#%02X%02X%02X", rand.Intn(256), rand.Intn(256), rand.Intn(256))
}
