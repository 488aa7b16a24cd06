/*package lib contains the configuration layer of the nblist command: parsing
the command line, config files and environment into Args, checking Args
against the file system, and the help text. Almost all of the heavy lifting
is done by lib/'s subpackages.
*/
package lib

// Version is the version of the software.
const Version = "1.0.0"
