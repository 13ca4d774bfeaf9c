package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/conduit-network/conduit/pkg/connector"
	"github.com/conduit-network/conduit/pkg/testbed"
)

var (
	dataFlag     string
	dataFileFlag string
	xmlFlag      bool
	expectFlag   []int
)

func addPayloadFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&dataFlag, "data", "", "request payload")
	cmd.Flags().StringVar(&dataFileFlag, "data-file", "", "read request payload from file")
	cmd.Flags().BoolVar(&xmlFlag, "xml", false, "payload is XML (default JSON)")
	addExpectFlag(cmd)
}

func addExpectFlag(cmd *cobra.Command) {
	cmd.Flags().IntSliceVar(&expectFlag, "expect", nil, "expected status codes (default 200)")
}

func loadPayload() (string, error) {
	if dataFlag != "" && dataFileFlag != "" {
		return "", fmt.Errorf("--data and --data-file are mutually exclusive")
	}
	if dataFileFlag != "" {
		data, err := os.ReadFile(dataFileFlag)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return dataFlag, nil
}

func requestOptions() []connector.RequestOption {
	opts := []connector.RequestOption{
		connector.WithTimeout(time.Duration(timeoutSec) * time.Second),
	}
	if xmlFlag {
		opts = append(opts, connector.WithXML())
	} else {
		opts = append(opts, connector.WithJSON())
	}
	if len(expectFlag) > 0 {
		opts = append(opts, connector.WithExpected(expectFlag...))
	}
	return opts
}

// applyCredentialOverrides injects --user / --ask-pass values as an
// alias-scoped credential set, the highest-precedence source.
func applyCredentialOverrides(device *testbed.Device) error {
	if username == "" && !askPass {
		return nil
	}
	cred := &testbed.Credential{Username: username}
	if askPass {
		fmt.Fprintf(os.Stderr, "Password for %s: ", device.Name)
		pass, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		cred.Password = testbed.Secret(pass)
	}
	conn, err := device.Connection(via)
	if err != nil {
		return err
	}
	if conn.Credentials == nil {
		conn.Credentials = map[string]*testbed.Credential{}
	}
	conn.Credentials[via] = cred
	return nil
}

func runVerb(do func(conn *connector.Connection, path string) (*connector.Result, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		conn, err := openConnection()
		if err != nil {
			return err
		}
		defer conn.Disconnect()

		res, err := do(conn, args[0])
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	}
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "GET a resource",
		Args:  cobra.ExactArgs(1),
		RunE: runVerb(func(conn *connector.Connection, path string) (*connector.Result, error) {
			opts := []connector.RequestOption{
				connector.WithTimeout(time.Duration(timeoutSec) * time.Second),
			}
			if len(expectFlag) > 0 {
				opts = append(opts, connector.WithExpected(expectFlag...))
			}
			return conn.Get(path, opts...)
		}),
	}
	addExpectFlag(cmd)
	return cmd
}

func newPostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post <path>",
		Short: "POST a payload to a resource",
		Args:  cobra.ExactArgs(1),
		RunE: runVerb(func(conn *connector.Connection, path string) (*connector.Result, error) {
			payload, err := loadPayload()
			if err != nil {
				return nil, err
			}
			return conn.Post(path, payload, requestOptions()...)
		}),
	}
	addPayloadFlags(cmd)
	return cmd
}

func newPutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <path>",
		Short: "PUT a payload to a resource",
		Args:  cobra.ExactArgs(1),
		RunE: runVerb(func(conn *connector.Connection, path string) (*connector.Result, error) {
			payload, err := loadPayload()
			if err != nil {
				return nil, err
			}
			return conn.Put(path, payload, requestOptions()...)
		}),
	}
	addPayloadFlags(cmd)
	return cmd
}

func newPatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch <path>",
		Short: "PATCH a payload on a resource",
		Args:  cobra.ExactArgs(1),
		RunE: runVerb(func(conn *connector.Connection, path string) (*connector.Result, error) {
			payload, err := loadPayload()
			if err != nil {
				return nil, err
			}
			return conn.Patch(path, payload, requestOptions()...)
		}),
	}
	addPayloadFlags(cmd)
	return cmd
}

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <path>",
		Short: "DELETE a resource",
		Args:  cobra.ExactArgs(1),
		RunE: runVerb(func(conn *connector.Connection, path string) (*connector.Result, error) {
			opts := []connector.RequestOption{
				connector.WithTimeout(time.Duration(timeoutSec) * time.Second),
			}
			if len(expectFlag) > 0 {
				opts = append(opts, connector.WithExpected(expectFlag...))
			}
			return conn.Delete(path, opts...)
		}),
	}
	addExpectFlag(cmd)
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Connect and disconnect to verify reachability and credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openConnection()
			if err != nil {
				return err
			}
			defer conn.Disconnect()
			fmt.Printf("%s: connected via %s\n", deviceName, via)
			return nil
		},
	}
}
