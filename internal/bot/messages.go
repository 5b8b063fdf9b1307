package bot

const (
	msgWelcome = "Time-tracking bot.\n" +
		"While a session is open the bot asks what you were doing at a " +
		"configurable interval (15 minutes by default).\n\n" +
		"Press /start to begin.\n\n" +
		"OTHER COMMANDS\n" +
		"/help - show this message\n" +
		"/list - list your categories\n" +
		"/buttons - show the control keyboard\n" +
		"/step - change the sampling interval"

	msgSessionOpen = "An unfinished session was found. " +
		"Stop it (\"Stop\") and start a new one (\"Start\")."

	msgUnfilled = "Fill in all previous activities first!"

	msgStopped       = "Stopped"
	msgNothingToStop = "Nothing to stop"

	// Callback routing matches on these prompt texts, mirroring the inline
	// keyboards they are sent with.
	msgChooseInterval = "Choose an interval"
	msgChooseStats    = "Statistics for which period?"

	msgFirstPrompt = "The first prompt arrives at %s."

	msgCurrentInterval = "Your current interval (mm:ss): %s\n" +
		"You have %d seconds to start the session with a different interval."

	msgIntervalSet = "\nInterval set (mm:ss): %s."

	msgSlotFilled   = "\nThis slot was already filled"
	msgServerError  = "\nServer error, sorry. The engineers have been notified."
	msgFilledAs     = "\nFilled: %s"
	msgNoStatsFound = "Nothing found for this period!"
	msgBadPeriod    = "Unknown stats period"

	msgAccessDenied = "Access Denied"

	msgSamplePrompt = "What were you doing between %s - %s?"
)
