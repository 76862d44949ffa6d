package filterbox_test

import (
	"fmt"

	"github.com/cwbudde/filterbox/dsp/filterbox"
)

func ExampleChain_SetCutoff() {
	chain, err := filterbox.NewChain(48000)
	if err != nil {
		panic(err)
	}

	fmt.Println(chain.SetCutoff(filterbox.LowPassStage, 4000))
	fmt.Println(chain.SetCutoff(filterbox.HighPassStage, 2))
	fmt.Println(chain.AdjustCutoff(filterbox.LowPassStage, 50000))
	// Output:
	// 4000
	// 10
	// 23000
}
