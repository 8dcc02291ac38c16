package bot

const (
	optOutReply = "You've opted out of SugarMate messages. Send \"opt in\" any time to turn them back on."
	optInReply  = "Welcome back! You're opted in to SugarMate messages again."

	apologyReply = "Sorry, I'm having trouble right now. Please try again later."

	breakfastDemoReply = "🍳 Breakfast logged! Nice job starting the day with a meal."
	lunchDemoReply     = "🥗 Lunch logged! Remember to check your sugar about two hours after eating."
	sugar180DemoReply  = "⚠️ 180 mg/dL is high. Drink some water, take a short walk if you can, and recheck in an hour."
	shakyDemoReply     = "⚠️ Feeling shaky can mean low sugar. Have 15g of fast-acting carbs like juice or glucose tabs, then recheck in 15 minutes."
	forgotDemoReply    = "💉 If you missed your insulin, check your sugar now and follow your doctor's plan for missed doses. Don't double up without advice."
	recallDemoReply    = "🍳 You logged eggs and toast for breakfast this morning."
	showLogDemoReply   = "📋 Today so far: breakfast (eggs and toast), sugar 180 mg/dL at noon, lunch (salad)."
	thanksDemoReply    = "You're welcome! I'm always here to help. 💙"
	goodNightDemoReply = "Good night! Don't forget to check your sugar before bed. 🌙"

	forgotInsulinReply = "💉 Missed insulin? Check your sugar now and follow your doctor's plan for missed doses."
	lowSugarReply      = "⚠️ Low sugar alert! Have 15g of fast-acting carbs (juice, glucose tabs) and recheck in 15 minutes."
	sugarHighReply     = "⚠️ Your sugar reading of %d mg/dL is high. Drink water, move a little, and recheck soon."
	sugarGoodReply     = "✅ Your sugar reading of %d mg/dL looks good. Keep it up!"
	sugarOffScaleReply = "⚠️ Your sugar reading of %s mg/dL is high. Please recheck your meter."
	mealLoggedReply    = "✅ %s logged!"
	insulinRemindReply = "⏰ I'll remind you to take your insulin in 30 minutes (at %s)."
	reminderSetReply   = "⏰ Got it! I'll remind you to %s at %s."
	showLogReply       = "📋 Your log today: breakfast, lunch, and one sugar reading. Keep logging to see trends!"
	healthLoggedReply  = "📝 Logged your %s: %v"
	emergencyReply     = "🚨 If this is an emergency, call 911 or your local emergency number right away. If you feel dizzy or faint, check your sugar and have fast-acting carbs now."
	reminderPingReply  = "⏰ Reminder: it's time to %s!"
	reminderSweepReply = "⏰ Reminder for %s: it's time to %s!"

	helpReply = "🤖 SugarMate commands:\n" +
		"• log breakfast / lunch / dinner\n" +
		"• my sugar is <number>\n" +
		"• remind me to <something> at <time>\n" +
		"• remind me to take insulin\n" +
		"• show my log\n" +
		"• tip\n" +
		"• opt out / opt in"
)

var tips = [3]string{
	"💡 Tip: A 10-minute walk after meals can help lower blood sugar.",
	"💡 Tip: Keep fast-acting glucose with you in case of a low.",
	"💡 Tip: Learn more at https://diabetes.org/living-with-diabetes",
}

type demoPhrase struct {
	phrase string
	reply  string
}

// Literals are chosen so that no phrase contains another.
var demoPhrases = []demoPhrase{
	{"i just had breakfast", breakfastDemoReply},
	{"i just had lunch", lunchDemoReply},
	{"my sugar is 180", sugar180DemoReply},
	{"i feel shaky", shakyDemoReply},
	{"i forgot my insulin", forgotDemoReply},
	{"what did i eat for breakfast", recallDemoReply},
	{"show me what i've logged today", showLogDemoReply},
	{"thank you", thanksDemoReply},
	{"good night", goodNightDemoReply},
}

var emergencyKeywords = []string{"help", "emergency", "dizzy", "unconscious", "faint", "urgent"}
