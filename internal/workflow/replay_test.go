package workflow

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	commonpb "go.temporal.io/api/common/v1"
	enumspb "go.temporal.io/api/enums/v1"
	historypb "go.temporal.io/api/history/v1"
	taskqueuepb "go.temporal.io/api/taskqueue/v1"
	"go.temporal.io/sdk/converter"
	"go.temporal.io/sdk/worker"

	"github.com/agentloop/agentloop/internal/activities"
	"github.com/agentloop/agentloop/internal/models"
)

// TestReplaySessionHistory replays a captured history of one full session
// (user turn, prompted shell call, approval, tool run, final answer,
// shutdown) against the current workflow code. A passing replay pins the
// determinism of the command sequence: turn IDs, sink state, and activity
// scheduling must come out identical to what was recorded.
func TestReplaySessionHistory(t *testing.T) {
	replayer := worker.NewWorkflowReplayer()
	replayer.RegisterWorkflow(SessionWorkflow)

	err := replayer.ReplayWorkflowHistory(nil, approvedToolCallHistory(t))
	require.NoError(t, err)
}

// approvedToolCallHistory builds the event history a session workflow
// records for a single turn with one approved shell call.
func approvedToolCallHistory(t *testing.T) *historypb.History {
	t.Helper()

	config := models.DefaultSessionConfig("conv-replay")

	return &historypb.History{Events: []*historypb.HistoryEvent{
		{
			EventId:   1,
			EventType: enumspb.EVENT_TYPE_WORKFLOW_EXECUTION_STARTED,
			Attributes: &historypb.HistoryEvent_WorkflowExecutionStartedEventAttributes{
				WorkflowExecutionStartedEventAttributes: &historypb.WorkflowExecutionStartedEventAttributes{
					WorkflowType: &commonpb.WorkflowType{Name: "SessionWorkflow"},
					TaskQueue:    &taskqueuepb.TaskQueue{Name: "agentloop"},
					Input:        payloads(t, config),
				},
			},
		},
		wftScheduled(2),
		wftStarted(3),
		wftCompleted(4, 2, 3),

		signaled(t, 5, SignalUserTurn, UserTurnPayload{
			Items: []UserInput{{Text: "Use shell to run 'echo hello world'."}},
		}),
		wftScheduled(6),
		wftStarted(7),
		wftCompleted(8, 6, 7),
		activityScheduled(9, "ModelCall"),
		activityStarted(10, 9),
		activityCompleted(t, 11, 9, 10, shellCallReply("call-1", "echo hello world")),
		wftScheduled(12),
		wftStarted(13),
		wftCompleted(14, 12, 13),

		signaled(t, 15, SignalApproval, ApprovalPayload{CallID: "call-1", Decision: DecisionApprove}),
		wftScheduled(16),
		wftStarted(17),
		wftCompleted(18, 16, 17),
		activityScheduled(19, "ToolExec"),
		activityStarted(20, 19),
		activityCompleted(t, 21, 19, 20, activities.ToolExecOutput{
			CallID: "call-1", ExitCode: 0, Stdout: "hello world\n",
		}),
		wftScheduled(22),
		wftStarted(23),
		wftCompleted(24, 22, 23),
		activityScheduled(25, "ModelCall"),
		activityStarted(26, 25),
		activityCompleted(t, 27, 25, 26, assistantReply("The output is: hello world")),
		wftScheduled(28),
		wftStarted(29),
		wftCompleted(30, 28, 29),

		signaled(t, 31, SignalShutdown, ShutdownPayload{}),
		wftScheduled(32),
		wftStarted(33),
		wftCompleted(34, 32, 33),
		{
			EventId:   35,
			EventType: enumspb.EVENT_TYPE_WORKFLOW_EXECUTION_COMPLETED,
			Attributes: &historypb.HistoryEvent_WorkflowExecutionCompletedEventAttributes{
				WorkflowExecutionCompletedEventAttributes: &historypb.WorkflowExecutionCompletedEventAttributes{
					WorkflowTaskCompletedEventId: 34,
				},
			},
		},
	}}
}

func wftScheduled(id int64) *historypb.HistoryEvent {
	return &historypb.HistoryEvent{
		EventId:   id,
		EventType: enumspb.EVENT_TYPE_WORKFLOW_TASK_SCHEDULED,
		Attributes: &historypb.HistoryEvent_WorkflowTaskScheduledEventAttributes{
			WorkflowTaskScheduledEventAttributes: &historypb.WorkflowTaskScheduledEventAttributes{},
		},
	}
}

func wftStarted(id int64) *historypb.HistoryEvent {
	return &historypb.HistoryEvent{
		EventId:   id,
		EventType: enumspb.EVENT_TYPE_WORKFLOW_TASK_STARTED,
		Attributes: &historypb.HistoryEvent_WorkflowTaskStartedEventAttributes{
			WorkflowTaskStartedEventAttributes: &historypb.WorkflowTaskStartedEventAttributes{
				ScheduledEventId: id - 1,
			},
		},
	}
}

func wftCompleted(id, scheduledID, startedID int64) *historypb.HistoryEvent {
	return &historypb.HistoryEvent{
		EventId:   id,
		EventType: enumspb.EVENT_TYPE_WORKFLOW_TASK_COMPLETED,
		Attributes: &historypb.HistoryEvent_WorkflowTaskCompletedEventAttributes{
			WorkflowTaskCompletedEventAttributes: &historypb.WorkflowTaskCompletedEventAttributes{
				ScheduledEventId: scheduledID,
				StartedEventId:   startedID,
			},
		},
	}
}

func signaled(t *testing.T, id int64, name string, payload interface{}) *historypb.HistoryEvent {
	t.Helper()
	return &historypb.HistoryEvent{
		EventId:   id,
		EventType: enumspb.EVENT_TYPE_WORKFLOW_EXECUTION_SIGNALED,
		Attributes: &historypb.HistoryEvent_WorkflowExecutionSignaledEventAttributes{
			WorkflowExecutionSignaledEventAttributes: &historypb.WorkflowExecutionSignaledEventAttributes{
				SignalName: name,
				Input:      payloads(t, payload),
			},
		},
	}
}

// activityScheduled assigns the activity ID the SDK generates during
// execution: the scheduled event's own ID.
func activityScheduled(id int64, activityType string) *historypb.HistoryEvent {
	return &historypb.HistoryEvent{
		EventId:   id,
		EventType: enumspb.EVENT_TYPE_ACTIVITY_TASK_SCHEDULED,
		Attributes: &historypb.HistoryEvent_ActivityTaskScheduledEventAttributes{
			ActivityTaskScheduledEventAttributes: &historypb.ActivityTaskScheduledEventAttributes{
				ActivityId:   strconv.FormatInt(id, 10),
				ActivityType: &commonpb.ActivityType{Name: activityType},
				TaskQueue:    &taskqueuepb.TaskQueue{Name: "agentloop"},
			},
		},
	}
}

func activityStarted(id, scheduledID int64) *historypb.HistoryEvent {
	return &historypb.HistoryEvent{
		EventId:   id,
		EventType: enumspb.EVENT_TYPE_ACTIVITY_TASK_STARTED,
		Attributes: &historypb.HistoryEvent_ActivityTaskStartedEventAttributes{
			ActivityTaskStartedEventAttributes: &historypb.ActivityTaskStartedEventAttributes{
				ScheduledEventId: scheduledID,
			},
		},
	}
}

func activityCompleted(t *testing.T, id, scheduledID, startedID int64, result interface{}) *historypb.HistoryEvent {
	t.Helper()
	return &historypb.HistoryEvent{
		EventId:   id,
		EventType: enumspb.EVENT_TYPE_ACTIVITY_TASK_COMPLETED,
		Attributes: &historypb.HistoryEvent_ActivityTaskCompletedEventAttributes{
			ActivityTaskCompletedEventAttributes: &historypb.ActivityTaskCompletedEventAttributes{
				ScheduledEventId: scheduledID,
				StartedEventId:   startedID,
				Result:           payloads(t, result),
			},
		},
	}
}

func payloads(t *testing.T, value interface{}) *commonpb.Payloads {
	t.Helper()
	p, err := converter.GetDefaultDataConverter().ToPayloads(value)
	require.NoError(t, err)
	return p
}
