// Package libs registers every bundled vendor dialect, in the manner of
// database/sql driver packages. Import it for side effects:
//
//	import _ "github.com/conduit-network/conduit/pkg/connector/libs"
//
// Programs wanting only specific dialects can import the vendor
// packages individually instead.
package libs

import (
	_ "github.com/conduit-network/conduit/pkg/connector/libs/apic"
	_ "github.com/conduit-network/conduit/pkg/connector/libs/bigip"
	_ "github.com/conduit-network/conduit/pkg/connector/libs/dnac"
	_ "github.com/conduit-network/conduit/pkg/connector/libs/elasticsearch"
	_ "github.com/conduit-network/conduit/pkg/connector/libs/generic"
	_ "github.com/conduit-network/conduit/pkg/connector/libs/ise"
	_ "github.com/conduit-network/conduit/pkg/connector/libs/nd"
	_ "github.com/conduit-network/conduit/pkg/connector/libs/nso"
	_ "github.com/conduit-network/conduit/pkg/connector/libs/nxos"
	_ "github.com/conduit-network/conduit/pkg/connector/libs/viptela"
)
