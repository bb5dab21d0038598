package cmd

import (
	"github.com/isopod-iot/sealer/src/gateway"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(gatewayCmd)
}

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Run the REST surface: ingestion, publication triggers, grants and retrieval",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := gateway.NewController(conf)
		if err != nil {
			return
		}

		err = controller.Start()
		if err != nil {
			return
		}

		<-ctx.Done()

		controller.StopWait()
		return
	},
}
