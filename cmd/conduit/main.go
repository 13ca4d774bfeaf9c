// Conduit - uniform REST connectivity for network devices
//
// A CLI for exercising device REST endpoints through the connector:
// one handle per device, vendor dialect picked from the testbed's
// os/platform tokens.
//
//	conduit -t testbed.yaml -d apic1 get /api/class/fvTenant.json
//	conduit -t testbed.yaml -d bigip1 post /mgmt/tm/ltm/pool --data '{"name":"p1"}' --json
//	conduit -t testbed.yaml -d ncs check
//
// Context flags:
//
//	-t, --testbed   Testbed YAML file
//	-d, --device    Device name within the testbed
//	    --via       Connection name to use (default "rest")
//	    --alias     Handle label for logs (default: via)
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/conduit-network/conduit/pkg/connector"
	_ "github.com/conduit-network/conduit/pkg/connector/libs"
	"github.com/conduit-network/conduit/pkg/testbed"
	"github.com/conduit-network/conduit/pkg/util"
	"github.com/conduit-network/conduit/pkg/version"
)

var (
	// Context flags
	testbedPath string
	deviceName  string
	via         string
	alias       string

	// Option flags
	timeoutSec   int
	retries      int
	retryWaitSec int
	username     string
	askPass      bool
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:           "conduit",
	Short:         "Uniform REST connectivity for network devices",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			return util.SetLogLevel("debug")
		}
		return nil
	},
}

func main() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&testbedPath, "testbed", "t", "", "testbed YAML file")
	pf.StringVarP(&deviceName, "device", "d", "", "device name within the testbed")
	pf.StringVar(&via, "via", "rest", "connection name to use")
	pf.StringVar(&alias, "alias", "", "handle label for logs (default: via)")
	pf.IntVar(&timeoutSec, "timeout", 30, "per-attempt timeout in seconds")
	pf.IntVar(&retries, "retries", 3, "connect retries")
	pf.IntVar(&retryWaitSec, "retry-wait", 10, "seconds between retries")
	pf.StringVarP(&username, "user", "u", "", "username override")
	pf.BoolVar(&askPass, "ask-pass", false, "prompt for the password")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newGetCmd(),
		newPostCmd(),
		newPutCmd(),
		newPatchCmd(),
		newDeleteCmd(),
		newCheckCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		util.Errorf("%v", err)
		os.Exit(1)
	}
}

// openConnection loads the testbed, applies credential overrides, and
// returns a connected handle.
func openConnection() (*connector.Connection, error) {
	if testbedPath == "" {
		return nil, fmt.Errorf("--testbed is required")
	}
	if deviceName == "" {
		return nil, fmt.Errorf("--device is required")
	}

	tb, err := testbed.Load(testbedPath)
	if err != nil {
		return nil, err
	}
	device, err := tb.Device(deviceName)
	if err != nil {
		return nil, err
	}
	if err := applyCredentialOverrides(device); err != nil {
		return nil, err
	}

	conn, err := connector.New(device, alias, via)
	if err != nil {
		return nil, err
	}
	err = conn.Connect(
		connector.WithConnectTimeout(time.Duration(timeoutSec)*time.Second),
		connector.WithConnectRetries(retries),
		connector.WithConnectRetryWait(time.Duration(retryWaitSec)*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func printResult(res *connector.Result) {
	fmt.Println(res.Text())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("conduit", version.Info())
		},
	}
}
