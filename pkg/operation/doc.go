/*
Package operation drives the download-then-publish pipeline.

	+-------------+
	|  Operation  |
	|  (Driver)   |
	+------+------+
	       |
	  +----+----+----------+
	  |         |          |
	+-+---+  +--+---+  +---+---+
	|Fetch|  |Write |  |Publish|
	|(GET)|  |(disk)|  | (git) |
	+-----+  +------+  +-------+

🎯 Purpose:
- Iterates the mapping strictly in order, one download at a time
- Writes each body to its destination path
- Tallies successes and publishes only when at least one file landed

🔄 Flow:
1. Receives the ordered mapping from config
2. Skips destinations matching ignore patterns
3. Fetches the body and writes it out (creating parent dirs when enabled)
4. Reports the tally, then stages/commits/pushes via the publisher

⚡ Key Responsibilities:
- Per-entry error isolation (one failure never aborts the batch)
- The zero-successes rule: nothing downloaded, nothing published
- Console narration of every attempt and outcome

🤝 Interfaces:
- Fetcher: retrieves URL content
- Publisher: runs the version-control publish step
- Reporter: narrates the publish step to the user
*/
package operation
