////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cmd

// This is a comprehensive list of CLI flag name constants. Organized by
// subcommand, with root level CLI flags at the top of the list. Pulling flags
// using Viper should use the constants defined here.
const (
	//////////////// Root flags ///////////////////////////////////////////////

	// Log flags
	logLevelFlag = "logLevel"
	logFlag      = "log"

	// Session flags
	sessionFlag  = "session"
	passwordFlag = "password"
	identityFlag = "identity"
	configFlag   = "config"
	paramsFlag   = "params"

	// Backend flags
	backendFlag = "backend"
	tokenFlag   = "token"

	// Misc
	profileCpuFlag = "profile-cpu"

	///////////////// Chat subcommand flags ///////////////////////////////////
	watchFlag    = "watch"
	messageFlag  = "message"
	fileFlag     = "file"
	whatsAppFlag = "whatsapp"

	///////////////// Contacts subcommand flags ///////////////////////////////
	contactsFileFlag = "from-file"

	///////////////// Profile subcommand flags ////////////////////////////////
	nameFlag    = "name"
	phoneFlag   = "phone"
	pictureFlag = "picture"

	///////////////// Assist subcommand flags /////////////////////////////////
	modeFlag = "mode"
)
